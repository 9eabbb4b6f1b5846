package coupon

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
)

// Validator checks a user-submitted code against the coupon directory.
type Validator interface {
	Validate(ctx context.Context, code string) (*Coupon, error)
}

// DirectoryValidator implements Validator with an exact, case-sensitive
// lookup. The only normalization applied to user input is trimming leading
// and trailing whitespace; "save10" does not match "SAVE10".
type DirectoryValidator struct {
	dir Directory
}

// NewDirectoryValidator creates a DirectoryValidator backed by dir.
func NewDirectoryValidator(dir Directory) *DirectoryValidator {
	return &DirectoryValidator{dir: dir}
}

// Validate trims the submitted code and resolves it in the directory.
// An empty or unknown code returns a *Rejection carrying a displayable
// reason; infrastructure failures are wrapped and returned as-is.
func (v *DirectoryValidator) Validate(ctx context.Context, code string) (*Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, &Rejection{Code: code, Reason: "enter a coupon code"}
	}

	c, err := v.dir.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrUnknownCode) {
			return nil, &Rejection{Code: code, Reason: "code not recognized"}
		}
		return nil, errors.Wrap(err, "lookup coupon")
	}
	return c, nil
}

// StaticDirectory is a map-backed Directory used by seeds and tests.
type StaticDirectory map[string]Coupon

// FindByCode implements Directory.
func (d StaticDirectory) FindByCode(_ context.Context, code string) (*Coupon, error) {
	c, ok := d[code]
	if !ok {
		return nil, ErrUnknownCode
	}
	return &c, nil
}
