package model

import "testing"

func TestParseTheme(t *testing.T) {
	tests := []struct {
		in      string
		want    Theme
		wantErr bool
	}{
		{in: "light", want: ThemeLight},
		{in: "dark", want: ThemeDark},
		{in: "Dark", wantErr: true},
		{in: "", wantErr: true},
		{in: "solarized", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseTheme(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTheme(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseTheme(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestThemeRoundTrip(t *testing.T) {
	for _, th := range []Theme{ThemeLight, ThemeDark} {
		got, err := ParseTheme(th.String())
		if err != nil || got != th {
			t.Errorf("ParseTheme(%q) = %v, %v; want %v", th.String(), got, err, th)
		}
		if th.Opposite().Opposite() != th {
			t.Errorf("%v.Opposite().Opposite() != %v", th, th)
		}
	}
}

func TestFieldErrorsError(t *testing.T) {
	fe := FieldErrors{FieldMessage: "too short", FieldName: "required"}
	want := "name: required; message: too short"
	if got := fe.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
