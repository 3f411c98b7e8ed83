package metrics

import (
	"bytes"
	"io"
	"math"
	"strconv"
	"strings"
)

// ContentType is the media type of the text exposition format.
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

var (
	helpEscaper  = strings.NewReplacer(`\`, `\\`, "\n", `\n`)
	labelEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, `"`, `\"`)
)

// WriteText renders samples in the Prometheus text exposition format. Each
// family gets its HELP and TYPE lines once, before its first sample;
// families keep the order in which they first appear.
func WriteText(w io.Writer, samples []Sample) (int64, error) {
	var order []string
	byName := make(map[string][]Sample)
	for _, s := range samples {
		if _, ok := byName[s.Name]; !ok {
			order = append(order, s.Name)
		}
		byName[s.Name] = append(byName[s.Name], s)
	}

	var buf bytes.Buffer
	for _, name := range order {
		buf.WriteString("# HELP ")
		buf.WriteString(name)
		if h := Help(name); h != "" {
			buf.WriteByte(' ')
			buf.WriteString(helpEscaper.Replace(h))
		}
		buf.WriteString("\n# TYPE ")
		buf.WriteString(name)
		buf.WriteString(" gauge\n")

		for _, s := range byName[name] {
			writeSample(&buf, s)
		}
	}

	return buf.WriteTo(w)
}

func writeSample(buf *bytes.Buffer, s Sample) {
	buf.WriteString(s.Name)
	if len(s.Labels) > 0 {
		buf.WriteByte('{')
		for i, l := range s.Labels {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(l.Name)
			buf.WriteString(`="`)
			buf.WriteString(labelEscaper.Replace(l.Value))
			buf.WriteByte('"')
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(' ')
	buf.WriteString(FormatValue(s.Value))
	buf.WriteByte('\n')
}

// FormatValue renders v as a decimal with at least one fractional digit,
// so 4 is written as "4.0".
func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}
