package xmlkdbx

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-i2p/kdbxgo/model"
)

// readUntilEnd consumes decoder tokens, invoking onStart for each child
// StartElement, until the EndElement closing the currently open element is
// reached. onStart must fully consume its own subtree (through its matching
// EndElement) before returning, so that the next token readUntilEnd sees is
// always a sibling start tag or the enclosing end tag.
func readUntilEnd(dec *xml.Decoder, onStart func(xml.StartElement) error) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("xmlkdbx: read token: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := onStart(t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// readText returns the concatenated character data of a leaf element, then
// consumes through its EndElement. Any unexpected nested element is skipped.
func readText(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", fmt.Errorf("xmlkdbx: read token: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			if err := dec.Skip(); err != nil {
				return "", fmt.Errorf("xmlkdbx: skip nested element: %w", err)
			}
		case xml.EndElement:
			return sb.String(), nil
		}
	}
}

// attrValue performs a case-insensitive lookup of name in attrs.
func attrValue(attrs []xml.Attr, name string) (string, bool) {
	for _, a := range attrs {
		if strings.EqualFold(a.Name.Local, name) {
			return a.Value, true
		}
	}
	return "", false
}

func parseBool(s string) bool {
	return strings.EqualFold(s, "true")
}

// parseTriBool parses a tristate boolean element body: "true"/"false", or
// "null"/empty meaning unset.
func parseTriBool(s string) *bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	default:
		return nil
	}
}

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func parseInt32(s string) int32 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	return int32(n)
}

// parseDatetime parses an RFC 3339 timestamp, matching the format KeePass
// writes for KDBX 3.1 (binary base64-packed 8-byte timestamps are a KDBX 4
// feature and are not used here).
func parseDatetime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func parseUUID(s string) model.UUID {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil || len(raw) != 16 {
		return model.ZeroUUID
	}
	var id model.UUID
	copy(id[:], raw)
	return id
}

func parseColor(s string) *model.Color {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	c, err := model.ColorFromHexString(s)
	if err != nil {
		return nil
	}
	return &c
}

func parseIcon(s string) model.Icon {
	id, err := model.NewIcon(parseInt32(s))
	if err != nil {
		return model.IconKey
	}
	return id
}

func encodeUUID(id model.UUID) string {
	return base64.StdEncoding.EncodeToString(id[:])
}

func formatDatetime(t time.Time) string {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	return t.UTC().Format(time.RFC3339)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func formatTriBool(b *bool) string {
	if b == nil {
		return "null"
	}
	return formatBool(*b)
}

// writeStartEnd writes <tag>text</tag> (or <tag attrs>text</tag>) as a single
// StartElement/CharData/EndElement sequence.
func writeStartEnd(enc *xml.Encoder, tag string, attrs []xml.Attr, text string) error {
	start := xml.StartElement{Name: xml.Name{Local: tag}, Attr: attrs}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if text != "" {
		if err := enc.EncodeToken(xml.CharData([]byte(text))); err != nil {
			return err
		}
	}
	return enc.EncodeToken(xml.EndElement{Name: start.Name})
}

func writeTag(enc *xml.Encoder, tag, text string) error {
	return writeStartEnd(enc, tag, nil, text)
}

func writeBoolTag(enc *xml.Encoder, tag string, b bool) error {
	return writeTag(enc, tag, formatBool(b))
}

func writeTriBoolTag(enc *xml.Encoder, tag string, b *bool) error {
	return writeTag(enc, tag, formatTriBool(b))
}

func writeInt64Tag(enc *xml.Encoder, tag string, n int64) error {
	return writeTag(enc, tag, strconv.FormatInt(n, 10))
}

func writeInt32Tag(enc *xml.Encoder, tag string, n int32) error {
	return writeTag(enc, tag, strconv.FormatInt(int64(n), 10))
}

func writeDatetimeTag(enc *xml.Encoder, tag string, t time.Time) error {
	return writeTag(enc, tag, formatDatetime(t))
}

func writeUUIDTag(enc *xml.Encoder, tag string, id model.UUID) error {
	return writeTag(enc, tag, encodeUUID(id))
}

func writeColorTag(enc *xml.Encoder, tag string, c *model.Color) error {
	if c == nil {
		return writeTag(enc, tag, "")
	}
	return writeTag(enc, tag, c.ToHexString())
}

func writeIconTag(enc *xml.Encoder, tag string, icon model.Icon) error {
	return writeInt32Tag(enc, tag, int32(icon))
}
