package comparator

import "testing"

func TestLexicalIsDefault(t *testing.T) {
	lex := Lexical()
	if lex.Name() != DefaultName {
		t.Fatal("expected", DefaultName, "got", lex.Name())
	}
	if lex.Compare([]byte("a"), []byte("b")) >= 0 {
		t.Fatal("expected a < b")
	}
}

func TestResolveUnknownComparator(t *testing.T) {
	if _, err := Resolve("does-not-exist"); err == nil {
		t.Fatal("expected error resolving unregistered comparator")
	}
}

func TestRegisterAndResolve(t *testing.T) {
	reverse := func(a, b []byte) int {
		n := len(a)
		if len(b) < n {
			n = len(b)
		}
		for i := 0; i < n; i++ {
			if a[i] != b[i] {
				return int(b[i]) - int(a[i])
			}
		}
		return len(b) - len(a)
	}
	Register("reverse.bytes", reverse)

	c, err := Resolve("reverse.bytes")
	if err != nil {
		t.Fatal(err)
	}
	if c.Compare([]byte("a"), []byte("b")) <= 0 {
		t.Fatal("expected reversed order: a > b")
	}
}
