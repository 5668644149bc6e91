package types

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrUnknownKind = errors.New("unknown report kind")

type ReportKind int

const (
	Present ReportKind = iota
	DayOff
	PresentOutside
)

// Payload maps form field names to values. A nil value is a field the remote
// form declares but that is left empty.
type Payload map[string]*string

var (
	kindNames = map[ReportKind]string{
		Present:        "PRESENT",
		DayOff:         "DAY_OFF",
		PresentOutside: "PRESENT_OUTSIDE",
	}

	catalog = map[ReportKind]Payload{
		Present: {
			"MainCode":      code("01"),
			"SecondaryCode": code("01"),
		},
		DayOff: {
			"MainCode":      code("04"),
			"SecondaryCode": code("01"),
			"Note":          nil,
		},
		PresentOutside: {
			"MainCode":      code("02"),
			"SecondaryCode": code("05"),
		},
	}
)

func code(s string) *string { return &s }

// Kinds returns every report kind in declaration order.
func Kinds() []ReportKind {
	return []ReportKind{Present, DayOff, PresentOutside}
}

func ParseReportKind(s string) (ReportKind, error) {
	name := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k ReportKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("ReportKind(%d)", int(k))
}

func (k ReportKind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(k.String()), nil
}

func (k *ReportKind) UnmarshalText(b []byte) error {
	parsed, err := ParseReportKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Payload returns a copy of the form fields for k.
func (k ReportKind) Payload() Payload {
	p := make(Payload, len(catalog[k]))
	for field, v := range catalog[k] {
		if v != nil {
			p[field] = code(*v)
		} else {
			p[field] = nil
		}
	}
	return p
}

// Form encodes the payload for a form POST. Nil fields are not sent.
func (k ReportKind) Form() url.Values {
	form := url.Values{}
	for field, v := range catalog[k] {
		if v != nil {
			form.Set(field, *v)
		}
	}
	return form
}
