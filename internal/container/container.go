// Package container marshals a translated memory image to and from the text
// object-code format read by the simulator: one line per memory cell,
// rendered as eight uppercase hex digits, in address order.
package container

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"sexpvm/internal/isa"
	"sexpvm/internal/translate"
)

// Marshal renders a memory image as text, one hex word per line.
func Marshal(img *translate.Image) []byte {
	var b strings.Builder

	for _, w := range img.Memory {
		b.WriteString(w.Text())
		b.WriteByte('\n')
	}

	return []byte(b.String())
}

// WriteTo writes the marshaled image to out.
func WriteTo(out io.Writer, img *translate.Image) (int64, error) {
	b := Marshal(img)
	n, err := out.Write(b)

	return int64(n), err
}

// Unmarshal parses a text object-code image back into a flat word slice.
// It does not know the original DataLen/CodeLen split; callers that need
// the split must have recorded it separately (the simulator only needs
// the flat memory).
func Unmarshal(data []byte) ([]isa.Word, error) {
	var mem []isa.Word

	scanner := bufio.NewScanner(strings.NewReader(string(data)))

	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		w, err := isa.ParseText(line)
		if err != nil {
			return nil, fmt.Errorf("container: line %d: %w", lineNum, err)
		}

		mem = append(mem, w)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("container: %w", err)
	}

	return mem, nil
}

// ReadFrom reads and parses a text object-code image.
func ReadFrom(in io.Reader) ([]isa.Word, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("container: %w", err)
	}

	return Unmarshal(data)
}
