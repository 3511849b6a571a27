/*
NAME
  dump.go

DESCRIPTION
  dump.go reads the C-style "frame dump" text format: a sequence of
  `unsigned char frameNNNN[]={...};` declarations, each holding 2 header
  bytes (border, background) followed by 1000 screen codes and 1000
  color codes.
*/

package screen

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformedDump is returned by ReadDump on a frame dump that doesn't
// match the expected grammar.
var ErrMalformedDump = errors.New("screen: malformed frame dump")

var framePattern = regexp.MustCompile(`(?s)unsigned char frame(\w+)\[\]=\{(.*?)\};`)

// ReadDump parses the C-style frame-dump text format into a Sequence. The
// charset is not assigned here — callers associate one per frame (or a
// shared one) via Screen.CharsetID once they know the charset arena
// layout.
func ReadDump(r io.Reader) (Sequence, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "screen: reading dump")
	}

	matches := framePattern.FindAllStringSubmatch(string(content), -1)
	if len(matches) == 0 {
		return nil, errors.Wrap(ErrMalformedDump, "no frame declarations found")
	}

	var seq Sequence
	for _, m := range matches {
		idx, err := strconv.ParseInt(m[1], 16, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedDump, "bad frame id %q: %v", m[1], err)
		}

		// Drop // comments (WriteDump puts one right after the opening
		// brace) and blank lines before reading the header.
		var lines []string
		for _, line := range strings.Split(m[2], "\n") {
			if j := strings.Index(line, "//"); j >= 0 {
				line = line[:j]
			}
			if strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) < 2 {
			return nil, errors.Wrapf(ErrMalformedDump, "frame %s: too few lines", m[1])
		}

		header := strings.Split(strings.TrimRight(strings.TrimSpace(lines[0]), ","), ",")
		if len(header) != 2 {
			return nil, errors.Wrapf(ErrMalformedDump, "frame %s: bad header %q", m[1], lines[0])
		}
		border, err := parseByteField(header[0])
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedDump, "frame %s: border: %v", m[1], err)
		}
		bg, err := parseByteField(header[1])
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedDump, "frame %s: background: %v", m[1], err)
		}

		var data []int
		for _, line := range lines[1:] {
			line = strings.TrimRight(strings.TrimSpace(line), ",")
			if line == "" {
				continue
			}
			for _, tok := range strings.Split(line, ",") {
				tok = strings.TrimSpace(tok)
				if tok == "" {
					continue
				}
				v, err := strconv.Atoi(tok)
				if err != nil {
					return nil, errors.Wrapf(ErrMalformedDump, "frame %s: bad value %q: %v", m[1], tok, err)
				}
				data = append(data, v)
			}
		}
		if len(data) < 2*Cells {
			return nil, errors.Wrapf(ErrMalformedDump, "frame %s: expected %d values, got %d", m[1], 2*Cells, len(data))
		}

		scr := NewScreen(int(idx))
		scr.Border = &border
		scr.Background = &bg
		for i := 0; i < Cells; i++ {
			scr.ScreenCodes[i] = byte(data[i])
			scr.ColorData[i] = byte(data[Cells+i])
		}
		seq = append(seq, scr)
	}

	return seq, nil
}

func parseByteField(s string) (byte, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 255 {
		return 0, errors.Errorf("value %d out of byte range", v)
	}
	return byte(v), nil
}

// WriteDump writes seq back out in the same C-array grammar ReadDump
// parses, matching the original tool's `to_petscii_editor_data`.
func WriteDump(w io.Writer, seq Sequence) error {
	for _, scr := range seq {
		border, bg := byte(0), byte(0)
		if scr.Border != nil {
			border = *scr.Border
		}
		if scr.Background != nil {
			bg = *scr.Background
		}
		if _, err := io.WriteString(w, "unsigned char frame"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, zeroPad(scr.Index, 4)+"[]={// border,bg,chars,colors\n"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, strconv.Itoa(int(border))+", "+strconv.Itoa(int(bg))+",\n"); err != nil {
			return err
		}
		if err := writeInts(w, scr.ScreenCodes[:]); err != nil {
			return err
		}
		if err := writeInts(w, scr.ColorData[:]); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "};\n"); err != nil {
			return err
		}
	}
	return nil
}

// zeroPad formats n in upper-case hex, zero-padded to width: the frame-id
// form ReadDump parses.
func zeroPad(n, width int) string {
	s := strings.ToUpper(strconv.FormatInt(int64(n), 16))
	for len(s) < width {
		s = "0" + s
	}
	return s
}

func writeInts(w io.Writer, vals []byte) error {
	const groupSize = 40
	for i := 0; i < len(vals); i += groupSize {
		end := i + groupSize
		if end > len(vals) {
			end = len(vals)
		}
		var sb strings.Builder
		for _, v := range vals[i:end] {
			sb.WriteString(strconv.Itoa(int(v)))
			sb.WriteByte(',')
		}
		sb.WriteByte('\n')
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}
