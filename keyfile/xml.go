package keyfile

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/go-i2p/kdbxgo/secret"
)

const xmlKeyFileVersion = "1.00"

type xmlKeyFile struct {
	XMLName xml.Name    `xml:"KeyFile"`
	Meta    xmlKeyMeta  `xml:"Meta"`
	Key     xmlKeyEntry `xml:"Key"`
}

type xmlKeyMeta struct {
	Version string `xml:"Version"`
}

type xmlKeyEntry struct {
	Data string `xml:"Data"`
}

func readXML(data []byte) (*KeyFile, error) {
	var doc xmlKeyFile
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, InvalidKeyFile{Reason: err.Error()}
	}
	if doc.Meta.Version != xmlKeyFileVersion {
		return nil, InvalidKeyFile{Reason: fmt.Sprintf("unsupported key file version %q", doc.Meta.Version)}
	}
	if doc.Key.Data == "" {
		return nil, InvalidKeyFile{Reason: "no Data tag found"}
	}
	key, err := base64.StdEncoding.DecodeString(doc.Key.Data)
	if err != nil {
		return nil, InvalidKeyFile{Reason: "Data tag is not valid base64"}
	}
	return &KeyFile{Key: secret.New(key), FileType: XML}, nil
}

func writeXML(w io.Writer, key []byte) error {
	doc := xmlKeyFile{
		Meta: xmlKeyMeta{Version: xmlKeyFileVersion},
		Key:  xmlKeyEntry{Data: base64.StdEncoding.EncodeToString(key)},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("keyfile: write xml header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("keyfile: encode xml: %w", err)
	}
	return nil
}
