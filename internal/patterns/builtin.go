package patterns

import (
	"regexp"

	"github.com/redactyl/piiscan/internal/types"
)

var (
	reSSN           = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	rePassport      = regexp.MustCompile(`\b[A-Z]\d{8}\b`)
	reDriverLicense = regexp.MustCompile(`\b[A-Z]\d{7}\b`)
	reEmail         = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	rePhone         = regexp.MustCompile(`(?:\+1[ .-]?)?\(?\b\d{3}\)?[ .-]\d{3}[ .-]\d{4}\b`)
	// assignment of a quoted or bare value to a password-like key
	rePassword     = regexp.MustCompile(`(?i)\b(?:password|passwd|pwd)\b.{0,20}?[:=]\s*(?:"[^"\n]*"|'[^'\n]*'|[^\s"']+)`)
	reAWSAccessKey = regexp.MustCompile(`\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`)
	reAWSSecretKey = regexp.MustCompile(`(?i)aws.{0,20}?(?:secret|access).{0,20}?[0-9a-zA-Z/+]{40}`)
	reJWT          = regexp.MustCompile(`\beyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`)
	// 13 to 19 digits, optionally grouped by single spaces or dashes
	reCreditCard = regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`)
	// bare account numbers are indistinguishable from other digit runs, so a
	// keyword is required
	reBankAccount   = regexp.MustCompile(`(?i)\b(?:account|acct)(?:\s*(?:no|number|#))?\.?\s*[:#]?\s*\d{8,17}\b`)
	reRoutingNumber = regexp.MustCompile(`\b\d{9}\b`)
	reUSAddress     = regexp.MustCompile(`\b\d{1,6}\s+(?:[A-Z][a-z]+\s+){1,4}(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct|Way|Place|Pl)\b`)
	reZipCode       = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)
	reMedicalRecord = regexp.MustCompile(`(?i)\b(?:MRN|medical record(?: number)?|patient id)\s*[:#]?\s*[A-Z0-9]{6,10}\b`)
	reGenericAPIKey = regexp.MustCompile(`(?i)api[_-]?key.{0,10}?[:=]\s*[0-9a-zA-Z\-]{16,}`)
)

var builtin = MustNew([]Definition{
	{Label: types.SSN, Re: reSSN, Weight: 0.8},
	{Label: types.Passport, Re: rePassport, Weight: 0.5},
	{Label: types.DriverLicense, Re: reDriverLicense, Weight: 0.4},
	{Label: types.Email, Re: reEmail, Weight: 0.7},
	{Label: types.Phone, Re: rePhone, Weight: 0.5},
	{Label: types.Password, Re: rePassword, Weight: 0.7},
	{Label: types.AWSAccessKey, Re: reAWSAccessKey, Weight: 0.9},
	{Label: types.AWSSecretKey, Re: reAWSSecretKey, Weight: 0.9},
	{Label: types.JWT, Re: reJWT, Weight: 0.7},
	{Label: types.CreditCard, Re: reCreditCard, Weight: 0.6},
	{Label: types.BankAccount, Re: reBankAccount, Weight: 0.5},
	{Label: types.RoutingNumber, Re: reRoutingNumber, Weight: 0.4},
	{Label: types.USAddress, Re: reUSAddress, Weight: 0.5},
	{Label: types.ZipCode, Re: reZipCode, Weight: 0.3},
	{Label: types.MedicalRecord, Re: reMedicalRecord, Weight: 0.6},
	{Label: types.GenericAPIKey, Re: reGenericAPIKey, Weight: 0.7},
})

// Default returns the built-in library covering every known label.
func Default() Library { return builtin }
