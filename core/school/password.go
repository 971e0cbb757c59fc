package school

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/masomo-sync/core"
)

// PasswordRule applies the password policy to a single value:
// - minLen: 8
// - no whitespace
// - not all numeric
// - complexity: 1 upper, 1 lower, 1 digit, 1 special
// - no common password
// Similarity to the user's own attributes needs the whole form; see passwordSimilarity.
const PasswordRule = "pwdminlen,pwdnospace,pwdnotallnum,pwdcplx,pwdnocommon"

var (
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdComplexityTag  = "pwdcplx"
	pwdComplexityText = "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"
	specialRegex      = regexp.MustCompile("[^A-Za-z0-9]")

	pwdNoCommonTag  = "pwdnocommon"
	pwdNoCommonText = "password is too common"

	pwdMaxSim      = .7
	pwdAttrSimText = "password cannot be similar to user attributes"

	//go:embed common-passwords.txt
	commonPasswordsFile []byte
	commonPasswords     = loadCommonPasswords(commonPasswordsFile)
)

func loadCommonPasswords(data []byte) []string {
	var pwds []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if pwd := core.CleanString(scanner.Text(), true); pwd != "" {
			pwds = append(pwds, pwd)
		}
	}
	sort.Strings(pwds)
	return pwds
}

// InitValidators registers the password policy tags & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	tags := []struct {
		tag  string
		text string
		fn   validator.Func
	}{
		{pwdMinLenTag, pwdMinLenText, pwdMinLenValidation},
		{pwdNoSpaceTag, pwdNoSpaceText, pwdNoSpaceValidation},
		{pwdNotAllNumTag, pwdNotAllNumText, pwdNotAllNumValidation},
		{pwdComplexityTag, pwdComplexityText, pwdComplexityValidation},
		{pwdNoCommonTag, pwdNoCommonText, pwdNoCommonValidation},
	}
	for _, t := range tags {
		_ = validate.RegisterValidation(t.tag, t.fn)
		core.RegisterCustomTranslation(validate, translator, t.tag, t.text)
	}
}

// Custom Validators

func pwdMinLenValidation(fl validator.FieldLevel) bool {
	return len([]rune(fl.Field().String())) >= pwdMinLen
}

func pwdNoSpaceValidation(fl validator.FieldLevel) bool {
	return strings.IndexFunc(fl.Field().String(), unicode.IsSpace) < 0
}

func pwdNotAllNumValidation(fl validator.FieldLevel) bool {
	pwd := fl.Field().String()
	return strings.IndexFunc(pwd, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0
}

func pwdComplexityValidation(fl validator.FieldLevel) bool {
	var hasUpper, hasLower, hasDig bool
	pwd := fl.Field().String()
	for _, char := range pwd {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDig = true
		}
	}
	return hasUpper && hasLower && hasDig && specialRegex.MatchString(pwd)
}

func pwdNoCommonValidation(fl validator.FieldLevel) bool {
	lpwd := strings.ToLower(fl.Field().String())
	idx := sort.SearchStrings(commonPasswords, lpwd)
	return idx >= len(commonPasswords) || commonPasswords[idx] != lpwd
}

// passwordSimilarity reports a field error when pwd is too similar to one of the user's attributes.
func passwordSimilarity(field, pwd string, attrs ...string) []core.FieldError {
	if pwd == "" {
		return nil
	}
	getRatio := func(pass, usrAttr string) float64 {
		if usrAttr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(usrAttr, "")).QuickRatio()
	}
	for _, attr := range attrs {
		if getRatio(pwd, attr) >= pwdMaxSim {
			return []core.FieldError{{Field: field, Error: pwdAttrSimText}}
		}
	}
	return nil
}
