package xmlkdbx

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/go-i2p/kdbxgo/dbcrypto"
	"github.com/go-i2p/kdbxgo/model"
)

// entryState tracks whether the entry currently being read is the database's
// live record for its UUID or a snapshot nested under that entry's History
// element. History entries never nest: a History tag encountered while
// already reading a History entry is simply not there to find, since the
// writer never emits one, but the reader also just never looks for it.
type entryState int

const (
	stateActive entryState = iota
	stateHistory
)

// reader carries the state that must be threaded through the whole document
// walk: the token decoder, the inner protected-value cipher (which must
// advance in strict document order), and the database-wide binary pool that
// inline (non-Ref) Entry binaries are folded into as they're encountered.
type reader struct {
	dec      *xml.Decoder
	cipher   *dbcrypto.InnerCipher
	binaries *model.BinariesMap
}

// Read parses a KDBX 3.1 XML document from r into a Database. cipher decrypts
// Protected="True" string and binary values as they're encountered in
// document order; it must not be reused or rewound afterward. The returned
// byte slice is the raw HeaderHash value echoed in Meta, if present, for the
// caller to verify against the outer header's own digest.
func Read(r io.Reader, cipher *dbcrypto.InnerCipher) (*model.Database, []byte, error) {
	rd := &reader{dec: xml.NewDecoder(r), cipher: cipher, binaries: model.NewBinariesMap()}

	start, err := firstStart(rd.dec)
	if err != nil {
		return nil, nil, err
	}
	if start.Name.Local != tagKeePassFile {
		return nil, nil, UnexpectedElement{Want: tagKeePassFile, Got: start.Name.Local}
	}

	// model.New would also name the root group after the database name;
	// here there is no database name yet (Meta hasn't been read), and a
	// missing <Root> must synthesize a group literally named "Root".
	db := &model.Database{
		Settings: model.DefaultSettings(),
		Meta:     model.NewMeta(""),
		Root:     model.NewGroup("Root"),
		Binaries: model.NewBinariesMap(),
	}
	var headerHash []byte

	err = readUntilEnd(rd.dec, func(t xml.StartElement) error {
		switch t.Name.Local {
		case tagMeta:
			hash, err := rd.readMeta(&db.Meta)
			if err != nil {
				return err
			}
			headerHash = hash
			return nil
		case tagRoot:
			return rd.readRoot(db)
		default:
			return rd.dec.Skip()
		}
	})
	if err != nil {
		return nil, nil, err
	}

	db.Binaries = rd.binaries
	return db, headerHash, nil
}

// firstStart skips any leading ProcInst/Directive/Comment tokens and returns
// the document's root StartElement.
func firstStart(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, fmt.Errorf("xmlkdbx: read root element: %w", err)
		}
		if t, ok := tok.(xml.StartElement); ok {
			return t, nil
		}
	}
}

func (rd *reader) readMeta(meta *model.Meta) ([]byte, error) {
	var headerHash []byte
	err := readUntilEnd(rd.dec, func(t xml.StartElement) error {
		switch t.Name.Local {
		case tagGenerator:
			v, err := readText(rd.dec)
			meta.Generator = v
			return err
		case tagHeaderHash:
			v, err := readText(rd.dec)
			if err != nil {
				return err
			}
			if v != "" {
				decoded, decErr := base64.StdEncoding.DecodeString(v)
				if decErr == nil {
					headerHash = decoded
				}
			}
			return nil
		case tagDatabaseName:
			v, err := readText(rd.dec)
			meta.DatabaseName = v
			return err
		case tagDatabaseNameChanged:
			v, err := readText(rd.dec)
			meta.DatabaseNameChanged = parseDatetime(v)
			return err
		case tagDatabaseDescription:
			v, err := readText(rd.dec)
			meta.Description = v
			return err
		case tagDatabaseDescriptionChanged:
			v, err := readText(rd.dec)
			meta.DescriptionChanged = parseDatetime(v)
			return err
		case tagDefaultUserName:
			v, err := readText(rd.dec)
			meta.DefaultUserName = v
			return err
		case tagDefaultUserNameChanged:
			v, err := readText(rd.dec)
			meta.DefaultUserNameChanged = parseDatetime(v)
			return err
		case tagMaintenanceHistoryDays:
			v, err := readText(rd.dec)
			meta.MaintenanceHistoryDays = parseInt64(v)
			return err
		case tagColor:
			v, err := readText(rd.dec)
			meta.Color = parseColor(v)
			return err
		case tagMasterKeyChanged:
			v, err := readText(rd.dec)
			meta.MasterKeyChanged = parseDatetime(v)
			return err
		case tagMasterKeyChangeRec:
			v, err := readText(rd.dec)
			meta.MasterKeyChangeRec = parseInt64(v)
			return err
		case tagMasterKeyChangeForce:
			v, err := readText(rd.dec)
			meta.MasterKeyChangeForce = parseInt64(v)
			return err
		case tagMemoryProtection:
			return rd.readMemoryProtection(&meta.MemoryProtection)
		case tagCustomIcons:
			return rd.readCustomIcons(meta)
		case tagRecycleBinEnabled:
			v, err := readText(rd.dec)
			meta.RecycleBinEnabled = parseBool(v)
			return err
		case tagRecycleBinUUID:
			v, err := readText(rd.dec)
			meta.RecycleBinUUID = parseUUID(v)
			return err
		case tagRecycleBinChanged:
			v, err := readText(rd.dec)
			meta.RecycleBinChanged = parseDatetime(v)
			return err
		case tagEntryTemplatesGroup:
			v, err := readText(rd.dec)
			meta.EntryTemplatesGroup = parseUUID(v)
			return err
		case tagEntryTemplatesGroupChanged:
			v, err := readText(rd.dec)
			meta.EntryTemplatesGroupChanged = parseDatetime(v)
			return err
		case tagLastSelectedGroup:
			v, err := readText(rd.dec)
			meta.LastSelectedGroup = parseUUID(v)
			return err
		case tagLastTopVisibleGroup:
			v, err := readText(rd.dec)
			meta.LastTopVisibleGroup = parseUUID(v)
			return err
		case tagHistoryMaxItems:
			v, err := readText(rd.dec)
			meta.HistoryMaxItems = parseInt64(v)
			return err
		case tagHistoryMaxSize:
			v, err := readText(rd.dec)
			meta.HistoryMaxSize = parseInt64(v)
			return err
		case tagBinaries:
			return rd.readBinaries(t.Attr)
		case tagCustomData:
			return rd.readCustomData(meta)
		default:
			return rd.dec.Skip()
		}
	})
	return headerHash, err
}

func (rd *reader) readMemoryProtection(mp *model.MemoryProtection) error {
	return readUntilEnd(rd.dec, func(t xml.StartElement) error {
		switch t.Name.Local {
		case tagProtectTitle:
			v, err := readText(rd.dec)
			mp.ProtectTitle = parseBool(v)
			return err
		case tagProtectUserName:
			v, err := readText(rd.dec)
			mp.ProtectUserName = parseBool(v)
			return err
		case tagProtectPassword:
			v, err := readText(rd.dec)
			mp.ProtectPassword = parseBool(v)
			return err
		case tagProtectURL:
			v, err := readText(rd.dec)
			mp.ProtectURL = parseBool(v)
			return err
		case tagProtectNotes:
			v, err := readText(rd.dec)
			mp.ProtectNotes = parseBool(v)
			return err
		default:
			return rd.dec.Skip()
		}
	})
}

func (rd *reader) readCustomIcons(meta *model.Meta) error {
	return readUntilEnd(rd.dec, func(t xml.StartElement) error {
		if t.Name.Local != tagIcon {
			return rd.dec.Skip()
		}
		var icon model.CustomIcon
		err := readUntilEnd(rd.dec, func(c xml.StartElement) error {
			switch c.Name.Local {
			case tagUUID:
				v, err := readText(rd.dec)
				icon.UUID = parseUUID(v)
				return err
			case tagData:
				v, err := readText(rd.dec)
				if err != nil {
					return err
				}
				data, decErr := base64.StdEncoding.DecodeString(v)
				if decErr != nil {
					return fmt.Errorf("xmlkdbx: decode custom icon data: %w", decErr)
				}
				icon.Data = data
				return nil
			default:
				return rd.dec.Skip()
			}
		})
		if err != nil {
			return err
		}
		meta.CustomIcons = append(meta.CustomIcons, icon)
		return nil
	})
}

func (rd *reader) readCustomData(meta *model.Meta) error {
	return readUntilEnd(rd.dec, func(t xml.StartElement) error {
		if t.Name.Local != tagItem {
			return rd.dec.Skip()
		}
		var key, value string
		err := readUntilEnd(rd.dec, func(c xml.StartElement) error {
			switch c.Name.Local {
			case tagKey:
				v, err := readText(rd.dec)
				key = v
				return err
			case tagValue:
				v, err := readText(rd.dec)
				value = v
				return err
			default:
				return rd.dec.Skip()
			}
		})
		if err != nil {
			return err
		}
		if meta.CustomData == nil {
			meta.CustomData = make(map[string]string)
		}
		meta.CustomData[key] = value
		return nil
	})
}

// readBinaries reads the Meta-level Binaries pool: a flat list of Binary
// elements each carrying an ID attribute and base64 (optionally gzip
// compressed) body.
func (rd *reader) readBinaries(_ []xml.Attr) error {
	return readUntilEnd(rd.dec, func(t xml.StartElement) error {
		if t.Name.Local != tagBinary {
			return rd.dec.Skip()
		}
		idStr, _ := attrValue(t.Attr, attrID)
		compressedStr, _ := attrValue(t.Attr, attrCompressed)
		text, err := readText(rd.dec)
		if err != nil {
			return err
		}
		raw, decErr := base64.StdEncoding.DecodeString(text)
		if decErr != nil {
			return fmt.Errorf("xmlkdbx: decode binary pool entry: %w", decErr)
		}
		if parseBool(compressedStr) {
			raw, decErr = gunzip(raw)
			if decErr != nil {
				return fmt.Errorf("xmlkdbx: gunzip binary pool entry: %w", decErr)
			}
		}
		id := model.BinaryID(parseInt64(idStr))
		rd.binaries.Set(id, raw)
		return nil
	})
}

func gunzip(data []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	return io.ReadAll(gz)
}

func (rd *reader) readRoot(db *model.Database) error {
	return readUntilEnd(rd.dec, func(t xml.StartElement) error {
		if t.Name.Local != tagGroup {
			return rd.dec.Skip()
		}
		g, err := rd.readGroup()
		if err != nil {
			return err
		}
		db.Root = g
		return nil
	})
}

func (rd *reader) readGroup() (model.Group, error) {
	g := model.Group{}
	err := readUntilEnd(rd.dec, func(t xml.StartElement) error {
		switch t.Name.Local {
		case tagUUID:
			v, err := readText(rd.dec)
			g.UUID = parseUUID(v)
			return err
		case tagName:
			v, err := readText(rd.dec)
			g.Name = v
			return err
		case tagNotes:
			v, err := readText(rd.dec)
			g.Notes = v
			return err
		case tagIconID:
			v, err := readText(rd.dec)
			g.IconID = parseIcon(v)
			return err
		case tagCustomIconUUID:
			v, err := readText(rd.dec)
			g.CustomIconUUID = parseUUID(v)
			return err
		case tagTimes:
			return rd.readTimes(&g.Times)
		case tagIsExpanded:
			v, err := readText(rd.dec)
			g.IsExpanded = parseBool(v)
			return err
		case tagDefaultAutoTypeSeq:
			v, err := readText(rd.dec)
			g.DefaultAutoTypeSeq = v
			return err
		case tagEnableAutoType:
			v, err := readText(rd.dec)
			if err != nil {
				return err
			}
			g.EnableAutoType = parseTriBool(v)
			return nil
		case tagEnableSearching:
			v, err := readText(rd.dec)
			if err != nil {
				return err
			}
			g.EnableSearching = parseTriBool(v)
			return nil
		case tagLastTopVisibleEntry:
			v, err := readText(rd.dec)
			g.LastTopVisibleEntry = parseUUID(v)
			return err
		case tagEntry:
			e, err := rd.readEntry(stateActive)
			if err != nil {
				return err
			}
			g.Entries = append(g.Entries, e)
			return nil
		case tagGroup:
			child, err := rd.readGroup()
			if err != nil {
				return err
			}
			g.Groups = append(g.Groups, child)
			return nil
		default:
			return rd.dec.Skip()
		}
	})
	return g, err
}

func (rd *reader) readEntry(state entryState) (model.Entry, error) {
	e := model.Entry{}
	err := readUntilEnd(rd.dec, func(t xml.StartElement) error {
		switch t.Name.Local {
		case tagUUID:
			v, err := readText(rd.dec)
			e.UUID = parseUUID(v)
			return err
		case tagIconID:
			v, err := readText(rd.dec)
			e.IconID = parseIcon(v)
			return err
		case tagCustomIconUUID:
			v, err := readText(rd.dec)
			e.CustomIconUUID = parseUUID(v)
			return err
		case tagForegroundColor:
			v, err := readText(rd.dec)
			e.ForegroundColor = parseColor(v)
			return err
		case tagBackgroundColor:
			v, err := readText(rd.dec)
			e.BackgroundColor = parseColor(v)
			return err
		case tagOverrideURL:
			v, err := readText(rd.dec)
			e.OverrideURL = v
			return err
		case tagTags:
			v, err := readText(rd.dec)
			e.Tags = v
			return err
		case tagTimes:
			return rd.readTimes(&e.Times)
		case tagString:
			field, err := rd.readString()
			if err != nil {
				return err
			}
			e.Strings.Set(field.Key, field.Value, field.Protected)
			return nil
		case tagBinary:
			ref, err := rd.readEntryBinary()
			if err != nil {
				return err
			}
			e.Binaries = append(e.Binaries, ref)
			return nil
		case tagAutoType:
			at, err := rd.readAutoType()
			if err != nil {
				return err
			}
			e.AutoType = at
			return nil
		case tagHistory:
			if state != stateActive {
				return rd.dec.Skip()
			}
			hist, err := rd.readHistory()
			if err != nil {
				return err
			}
			e.History = hist
			return nil
		default:
			return rd.dec.Skip()
		}
	})
	return e, err
}

func (rd *reader) readHistory() ([]model.Entry, error) {
	var history []model.Entry
	err := readUntilEnd(rd.dec, func(t xml.StartElement) error {
		if t.Name.Local != tagEntry {
			return rd.dec.Skip()
		}
		e, err := rd.readEntry(stateHistory)
		if err != nil {
			return err
		}
		history = append(history, e)
		return nil
	})
	return history, err
}

func (rd *reader) readAutoType() (model.AutoType, error) {
	at := model.AutoType{}
	err := readUntilEnd(rd.dec, func(t xml.StartElement) error {
		switch t.Name.Local {
		case tagEnabled:
			v, err := readText(rd.dec)
			at.Enabled = parseBool(v)
			return err
		case tagDataTransferObfuscation:
			v, err := readText(rd.dec)
			at.ObfuscationOptions = model.Obfuscation(parseInt32(v))
			return err
		case tagDefaultSequence:
			v, err := readText(rd.dec)
			at.DefaultSequence = v
			return err
		case tagAssociation:
			assoc, err := rd.readAssociation()
			if err != nil {
				return err
			}
			at.Associations = append(at.Associations, assoc)
			return nil
		default:
			return rd.dec.Skip()
		}
	})
	return at, err
}

func (rd *reader) readAssociation() (model.Association, error) {
	a := model.Association{}
	err := readUntilEnd(rd.dec, func(t xml.StartElement) error {
		switch t.Name.Local {
		case tagWindow:
			v, err := readText(rd.dec)
			a.Window = v
			return err
		case tagKeystrokeSequence:
			v, err := readText(rd.dec)
			a.KeystrokeSequence = v
			return err
		default:
			return rd.dec.Skip()
		}
	})
	return a, err
}

func (rd *reader) readTimes(times *model.Times) error {
	return readUntilEnd(rd.dec, func(t xml.StartElement) error {
		switch t.Name.Local {
		case tagCreationTime:
			v, err := readText(rd.dec)
			times.CreationTime = parseDatetime(v)
			return err
		case tagLastModificationTime:
			v, err := readText(rd.dec)
			times.LastModificationTime = parseDatetime(v)
			return err
		case tagLastAccessTime:
			v, err := readText(rd.dec)
			times.LastAccessTime = parseDatetime(v)
			return err
		case tagExpiryTime:
			v, err := readText(rd.dec)
			times.ExpiryTime = parseDatetime(v)
			return err
		case tagExpires:
			v, err := readText(rd.dec)
			times.Expires = parseBool(v)
			return err
		case tagUsageCount:
			v, err := readText(rd.dec)
			times.UsageCount = parseInt64(v)
			return err
		case tagLocationChanged:
			v, err := readText(rd.dec)
			times.LocationChanged = parseDatetime(v)
			return err
		default:
			return rd.dec.Skip()
		}
	})
}

// readString reads an Entry String element's Key/Value pair, decrypting the
// value if its Value tag carries Protected="True". A legacy ProtectInMemory
// attribute, if present, is read and discarded: it is never consulted for
// the decrypt decision and is never written back out.
func (rd *reader) readString() (model.StringField, error) {
	field := model.StringField{}
	err := readUntilEnd(rd.dec, func(t xml.StartElement) error {
		switch t.Name.Local {
		case tagKey:
			v, err := readText(rd.dec)
			field.Key = v
			return err
		case tagValue:
			protectedStr, _ := attrValue(t.Attr, attrProtected)
			protected := parseBool(protectedStr)
			text, err := readText(rd.dec)
			if err != nil {
				return err
			}
			if protected {
				raw, decErr := base64.StdEncoding.DecodeString(text)
				if decErr != nil {
					return fmt.Errorf("xmlkdbx: decode protected string: %w", decErr)
				}
				plain := rd.cipher.Process(raw)
				field.Value = string(plain)
				field.Protected = true
			} else {
				field.Value = text
			}
			return nil
		default:
			return rd.dec.Skip()
		}
	})
	return field, err
}

// readEntryBinary reads an Entry Binary element. A Ref attribute on Value
// points directly at the Meta binary pool; a Plain or Protected inline value
// (no Ref) is folded into the pool under a freshly allocated id so that
// model.BinaryRef only ever needs to carry the Ref form.
func (rd *reader) readEntryBinary() (model.BinaryRef, error) {
	ref := model.BinaryRef{}
	err := readUntilEnd(rd.dec, func(t xml.StartElement) error {
		switch t.Name.Local {
		case tagKey:
			v, err := readText(rd.dec)
			ref.Key = v
			return err
		case tagValue:
			if refStr, ok := attrValue(t.Attr, attrRef); ok {
				text, err := readText(rd.dec)
				if err != nil {
					return err
				}
				_ = text // a Ref'd Value element carries no body
				ref.ID = model.BinaryID(parseInt64(refStr))
				return nil
			}
			protectedStr, _ := attrValue(t.Attr, attrProtected)
			protected := parseBool(protectedStr)
			text, err := readText(rd.dec)
			if err != nil {
				return err
			}
			raw, decErr := base64.StdEncoding.DecodeString(text)
			if decErr != nil {
				return fmt.Errorf("xmlkdbx: decode inline binary: %w", decErr)
			}
			if protected {
				raw = rd.cipher.Process(raw)
			}
			ref.ID = rd.binaries.Add(raw)
			return nil
		default:
			return rd.dec.Skip()
		}
	})
	return ref, err
}
