package keyword

import (
	"net/mail"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/jsonval/pkg/digest"
	"github.com/aretw0/jsonval/pkg/regex"
	"github.com/aretw0/jsonval/pkg/report"
	"github.com/aretw0/jsonval/pkg/tree"
	"github.com/aretw0/jsonval/pkg/value"
)

// FormatFunc reports whether s conforms to a format.
type FormatFunc func(s string, re regex.Engine) bool

// Formats maps format attribute names to their checkers.
type Formats map[string]FormatFunc

// DefaultFormats returns the format attributes known out of the box.
func DefaultFormats() Formats {
	return Formats{
		"date-time":     layout(time.RFC3339Nano),
		"date":          layout(time.DateOnly),
		"time":          layout("15:04:05Z07:00", "15:04:05.999999999Z07:00", time.TimeOnly),
		"email":         isEmail,
		"hostname":      isHostname,
		"host-name":     isHostname,
		"ipv4":          isIPv4,
		"ip-address":    isIPv4,
		"ipv6":          isIPv6,
		"uri":           isURI,
		"uri-reference": isURIReference,
		"regex":         func(s string, re regex.Engine) bool { return re.IsValid(s) },
	}
}

func layout(layouts ...string) FormatFunc {
	return func(s string, _ regex.Engine) bool {
		for _, l := range layouts {
			if _, err := time.Parse(l, s); err == nil {
				return true
			}
		}
		return false
	}
}

func isEmail(s string, _ regex.Engine) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func isHostname(s string, _ regex.Engine) bool {
	s = strings.TrimSuffix(s, ".")
	if s == "" || len(s) > 253 {
		return false
	}
	for _, label := range strings.Split(s, ".") {
		if label == "" || len(label) > 63 || label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for _, c := range label {
			if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-') {
				return false
			}
		}
	}
	return true
}

func isIPv4(s string, _ regex.Engine) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Is4()
}

func isIPv6(s string, _ regex.Engine) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Is6() && addr.Zone() == ""
}

func isURI(s string, _ regex.Engine) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs()
}

func isURIReference(s string, _ regex.Engine) bool {
	_, err := url.Parse(s)
	return err == nil
}

type formatValidator struct {
	name  string
	check FormatFunc
}

func buildFormat(formats Formats) Factory {
	return func(kw, _ value.Value, _ digest.Digest) (Validator, error) {
		return formatValidator{name: kw.Str(), check: formats[kw.Str()]}, nil
	}
}

func (formatValidator) Keyword() string { return "format" }

func (v formatValidator) Validate(ctx Context, rep *report.Report, inst tree.Instance) error {
	if v.check == nil {
		m := Warn(ctx, inst, "format", "format attribute %q not supported", v.name).
			With("attribute", value.String(v.name))
		return rep.Log(m)
	}
	if v.check(inst.Node().Str(), ctx.Regex()) {
		return nil
	}
	m := Fail(ctx, inst, "format", "string %q is invalid against requested %s format", inst.Node().Str(), v.name).
		With("attribute", value.String(v.name)).
		With("value", inst.Node())
	return rep.Log(m)
}
