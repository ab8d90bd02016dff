package ogimage

import (
	"errors"
	"testing"
)

func TestRequestValidate(t *testing.T) {
	valid := Request{Title: "Hello World", Slug: "hello-world", Lang: LangEn, Size: SizeDefault}
	tests := []struct {
		name   string
		mutate func(*Request)
		want   error
	}{
		{"valid", func(r *Request) {}, nil},
		{"small", func(r *Request) { r.Size = SizeSmall }, nil},
		{"blank title", func(r *Request) { r.Title = "  " }, ErrMissingTitle},
		{"missing slug", func(r *Request) { r.Slug = "" }, ErrMissingSlug},
		{"empty size", func(r *Request) { r.Size = "" }, ErrUnsupportedSize},
		{"unknown size", func(r *Request) { r.Size = "huge" }, ErrUnsupportedSize},
		{"unknown lang", func(r *Request) { r.Lang = "de" }, ErrUnsupportedLang},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			if err := r.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseSizeAndLang(t *testing.T) {
	if s, ok := ParseSize("small"); !ok || s != SizeSmall {
		t.Errorf("ParseSize(small) = %q, %v", s, ok)
	}
	if _, ok := ParseSize("medium"); ok {
		t.Error("ParseSize(medium) should fail")
	}
	if l, ok := ParseLang("en"); !ok || l != LangEn {
		t.Errorf("ParseLang(en) = %q, %v", l, ok)
	}
	if _, ok := ParseLang("fr"); ok {
		t.Error("ParseLang(fr) should fail")
	}

	sizes := SupportedSizes()
	if len(sizes) != 2 || sizes[0] != SizeDefault || sizes[1] != SizeSmall {
		t.Errorf("SupportedSizes() = %v", sizes)
	}
}
