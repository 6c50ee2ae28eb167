package procfile

import "github.com/ovis-hpc/ldms-appsampler/internal/apperrors"

// ValidateArgvSep checks that sep is one of the three accepted forms:
// empty (leave NULs), a single literal character, or a two-character
// backslash escape (\0 \b \t \n \v \r \f). Any other form is an
// InvalidConfig error (spec.md §4.5, end-to-end scenario 6).
func ValidateArgvSep(sep string) error {
	_, _, err := applyArgvSep(sep)
	return err
}

// applyArgvSep decodes sep into the byte it replaces embedded NULs
// with (replace == false means leave NULs alone), reporting an error
// for anything other than the three accepted forms.
func applyArgvSep(sep string) (replacement byte, replace bool, err error) {
	if sep == "" {
		return 0, false, nil
	}
	if len(sep) == 1 {
		return sep[0], true, nil
	}
	if len(sep) == 2 && sep[0] == '\\' {
		switch sep[1] {
		case '0':
			return 0, false, nil
		case 'b':
			return ' ', true, nil
		case 't':
			return '\t', true, nil
		case 'n':
			return '\n', true, nil
		case 'v':
			return '\v', true, nil
		case 'r':
			return '\r', true, nil
		case 'f':
			return '\f', true, nil
		}
	}
	return 0, false, &apperrors.InvalidConfigError{Reason: "argv_sep: " + sep + " is not a literal character or a recognized \\escape"}
}

// QuoteArgv reformats a NUL-delimited argv buffer of length n
// (including the trailing NUL) per sep, replacing every embedded NUL
// but the last. Matches
// quote_argv's behavior of leaving buf[len-1] untouched.
func QuoteArgv(buf []byte, n int, sep string) ([]byte, error) {
	replacement, replace, err := applyArgvSep(sep)
	if err != nil {
		return buf, err
	}
	if !replace || n == 0 {
		return buf, nil
	}
	for i := 0; i < n-1 && i < len(buf); i++ {
		if buf[i] == 0 {
			buf[i] = replacement
		}
	}
	return buf, nil
}
