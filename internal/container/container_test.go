package container_test

import (
	"bytes"
	"testing"

	"sexpvm/internal/container"
	"sexpvm/internal/lexer"
	"sexpvm/internal/translate"
)

func TestRoundTrip(t *testing.T) {
	terms, err := lexer.Lex("(print_char 65)")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}

	img, err := translate.Translate(terms)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	var buf bytes.Buffer
	if _, err := container.WriteTo(&buf, img); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	mem, err := container.ReadFrom(&buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}

	if len(mem) != len(img.Memory) {
		t.Fatalf("len(mem) = %d, want %d", len(mem), len(img.Memory))
	}

	for i := range mem {
		if mem[i] != img.Memory[i] {
			t.Fatalf("cell %d = %s, want %s", i, mem[i].Text(), img.Memory[i].Text())
		}
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, err := container.Unmarshal([]byte("not-hex\n")); err == nil {
		t.Fatal("Unmarshal: want error for malformed line")
	}
}
