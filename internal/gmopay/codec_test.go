package gmopay

import "testing"

func TestEncodeBase64(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"hello", "aGVsbG8="},
		{"hi", "aGk="},
		// Multibyte input stays standard Base64, no URL-safe substitution.
		{"アンコール", "44Ki44Oz44Kz44O844Or"},
	}
	for _, c := range cases {
		if got := EncodeBase64([]byte(c.in)); got != c.want {
			t.Errorf("EncodeBase64(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSHA256Hex(t *testing.T) {
	got := SHA256Hex([]byte("abc"))
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("SHA256Hex(abc) = %q, want %q", got, want)
	}
	if len(got) != 64 {
		t.Errorf("digest length = %d, want 64", len(got))
	}
	if got != SHA256Hex([]byte("abc")) {
		t.Error("SHA256Hex is not deterministic")
	}
}
