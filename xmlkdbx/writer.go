package xmlkdbx

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"sort"

	"github.com/go-i2p/kdbxgo/dbcrypto"
	"github.com/go-i2p/kdbxgo/model"
)

type writer struct {
	enc      *xml.Encoder
	cipher   *dbcrypto.InnerCipher
	binaries *model.BinariesMap
}

// Write serializes db as a KDBX 3.1 XML document to w, encrypting every
// string value whose StringField.Protected flag is set with cipher in
// strict document order. headerHash is the outer header's freshly computed
// digest, echoed into Meta/HeaderHash when non-nil.
func Write(w io.Writer, db *model.Database, headerHash []byte, cipher *dbcrypto.InnerCipher) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("xmlkdbx: write xml header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	wr := &writer{enc: enc, cipher: cipher, binaries: db.Binaries}

	root := xml.StartElement{Name: xml.Name{Local: tagKeePassFile}}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}
	if err := wr.writeMeta(&db.Meta, headerHash, db.Binaries); err != nil {
		return err
	}
	if err := wr.writeRoot(&db.Root); err != nil {
		return err
	}
	if err := enc.EncodeToken(xml.EndElement{Name: root.Name}); err != nil {
		return err
	}
	return enc.Flush()
}

func (wr *writer) startElement(tag string, attrs ...xml.Attr) error {
	return wr.enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: tag}, Attr: attrs})
}

func (wr *writer) endElement(tag string) error {
	return wr.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: tag}})
}

func (wr *writer) writeMeta(meta *model.Meta, headerHash []byte, binaries *model.BinariesMap) error {
	if err := wr.startElement(tagMeta); err != nil {
		return err
	}
	if err := wr.writeBinaries(binaries); err != nil {
		return err
	}
	if err := writeColorTag(wr.enc, tagColor, meta.Color); err != nil {
		return err
	}
	if err := wr.writeCustomData(meta.CustomData); err != nil {
		return err
	}
	if err := wr.writeCustomIcons(meta.CustomIcons); err != nil {
		return err
	}
	if err := writeTag(wr.enc, tagDatabaseDescription, meta.Description); err != nil {
		return err
	}
	if err := writeDatetimeTag(wr.enc, tagDatabaseDescriptionChanged, meta.DescriptionChanged); err != nil {
		return err
	}
	if err := writeTag(wr.enc, tagDatabaseName, meta.DatabaseName); err != nil {
		return err
	}
	if err := writeDatetimeTag(wr.enc, tagDatabaseNameChanged, meta.DatabaseNameChanged); err != nil {
		return err
	}
	if err := writeTag(wr.enc, tagDefaultUserName, meta.DefaultUserName); err != nil {
		return err
	}
	if err := writeDatetimeTag(wr.enc, tagDefaultUserNameChanged, meta.DefaultUserNameChanged); err != nil {
		return err
	}
	if err := writeUUIDTag(wr.enc, tagEntryTemplatesGroup, meta.EntryTemplatesGroup); err != nil {
		return err
	}
	if err := writeDatetimeTag(wr.enc, tagEntryTemplatesGroupChanged, meta.EntryTemplatesGroupChanged); err != nil {
		return err
	}
	if err := writeTag(wr.enc, tagGenerator, meta.Generator); err != nil {
		return err
	}
	if headerHash != nil {
		if err := writeTag(wr.enc, tagHeaderHash, base64.StdEncoding.EncodeToString(headerHash)); err != nil {
			return err
		}
	}
	if err := writeInt64Tag(wr.enc, tagHistoryMaxItems, meta.HistoryMaxItems); err != nil {
		return err
	}
	if err := writeInt64Tag(wr.enc, tagHistoryMaxSize, meta.HistoryMaxSize); err != nil {
		return err
	}
	if err := writeUUIDTag(wr.enc, tagLastSelectedGroup, meta.LastSelectedGroup); err != nil {
		return err
	}
	if err := writeUUIDTag(wr.enc, tagLastTopVisibleGroup, meta.LastTopVisibleGroup); err != nil {
		return err
	}
	if err := writeInt64Tag(wr.enc, tagMaintenanceHistoryDays, meta.MaintenanceHistoryDays); err != nil {
		return err
	}
	if err := writeInt64Tag(wr.enc, tagMasterKeyChangeForce, meta.MasterKeyChangeForce); err != nil {
		return err
	}
	if err := writeInt64Tag(wr.enc, tagMasterKeyChangeRec, meta.MasterKeyChangeRec); err != nil {
		return err
	}
	if err := writeDatetimeTag(wr.enc, tagMasterKeyChanged, meta.MasterKeyChanged); err != nil {
		return err
	}
	if err := wr.writeMemoryProtection(&meta.MemoryProtection); err != nil {
		return err
	}
	if err := writeDatetimeTag(wr.enc, tagRecycleBinChanged, meta.RecycleBinChanged); err != nil {
		return err
	}
	if err := writeBoolTag(wr.enc, tagRecycleBinEnabled, meta.RecycleBinEnabled); err != nil {
		return err
	}
	if err := writeUUIDTag(wr.enc, tagRecycleBinUUID, meta.RecycleBinUUID); err != nil {
		return err
	}
	return wr.endElement(tagMeta)
}

func (wr *writer) writeMemoryProtection(mp *model.MemoryProtection) error {
	if err := wr.startElement(tagMemoryProtection); err != nil {
		return err
	}
	if err := writeBoolTag(wr.enc, tagProtectTitle, mp.ProtectTitle); err != nil {
		return err
	}
	if err := writeBoolTag(wr.enc, tagProtectUserName, mp.ProtectUserName); err != nil {
		return err
	}
	if err := writeBoolTag(wr.enc, tagProtectPassword, mp.ProtectPassword); err != nil {
		return err
	}
	if err := writeBoolTag(wr.enc, tagProtectURL, mp.ProtectURL); err != nil {
		return err
	}
	if err := writeBoolTag(wr.enc, tagProtectNotes, mp.ProtectNotes); err != nil {
		return err
	}
	return wr.endElement(tagMemoryProtection)
}

func (wr *writer) writeCustomIcons(icons []model.CustomIcon) error {
	if err := wr.startElement(tagCustomIcons); err != nil {
		return err
	}
	for _, icon := range icons {
		if err := wr.startElement(tagIcon); err != nil {
			return err
		}
		if err := writeUUIDTag(wr.enc, tagUUID, icon.UUID); err != nil {
			return err
		}
		if err := writeTag(wr.enc, tagData, base64.StdEncoding.EncodeToString(icon.Data)); err != nil {
			return err
		}
		if err := wr.endElement(tagIcon); err != nil {
			return err
		}
	}
	return wr.endElement(tagCustomIcons)
}

func (wr *writer) writeCustomData(data map[string]string) error {
	if err := wr.startElement(tagCustomData); err != nil {
		return err
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := wr.startElement(tagItem); err != nil {
			return err
		}
		if err := writeTag(wr.enc, tagKey, k); err != nil {
			return err
		}
		if err := writeTag(wr.enc, tagValue, data[k]); err != nil {
			return err
		}
		if err := wr.endElement(tagItem); err != nil {
			return err
		}
	}
	return wr.endElement(tagCustomData)
}

// writeBinaries emits the Meta-level binary pool, always gzip compressed.
func (wr *writer) writeBinaries(binaries *model.BinariesMap) error {
	if err := wr.startElement(tagBinaries); err != nil {
		return err
	}
	if binaries != nil {
		ids := binaries.IDs()
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			data, _ := binaries.Get(id)
			compressed, err := gzipBytes(data)
			if err != nil {
				return fmt.Errorf("xmlkdbx: gzip binary pool entry: %w", err)
			}
			attrs := []xml.Attr{
				{Name: xml.Name{Local: attrID}, Value: fmt.Sprintf("%d", id)},
				{Name: xml.Name{Local: attrCompressed}, Value: "True"},
			}
			if err := writeStartEnd(wr.enc, tagBinary, attrs, base64.StdEncoding.EncodeToString(compressed)); err != nil {
				return err
			}
		}
	}
	return wr.endElement(tagBinaries)
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (wr *writer) writeRoot(root *model.Group) error {
	if err := wr.startElement(tagRoot); err != nil {
		return err
	}
	if err := wr.writeGroup(root); err != nil {
		return err
	}
	return wr.endElement(tagRoot)
}

func (wr *writer) writeGroup(g *model.Group) error {
	if err := wr.startElement(tagGroup); err != nil {
		return err
	}
	if err := writeUUIDTag(wr.enc, tagUUID, g.UUID); err != nil {
		return err
	}
	if err := writeTag(wr.enc, tagDefaultAutoTypeSeq, g.DefaultAutoTypeSeq); err != nil {
		return err
	}
	if err := writeTriBoolTag(wr.enc, tagEnableAutoType, g.EnableAutoType); err != nil {
		return err
	}
	if err := writeTriBoolTag(wr.enc, tagEnableSearching, g.EnableSearching); err != nil {
		return err
	}
	if err := writeIconTag(wr.enc, tagIconID, g.IconID); err != nil {
		return err
	}
	if g.CustomIconUUID != model.ZeroUUID {
		if err := writeUUIDTag(wr.enc, tagCustomIconUUID, g.CustomIconUUID); err != nil {
			return err
		}
	}
	if err := writeBoolTag(wr.enc, tagIsExpanded, g.IsExpanded); err != nil {
		return err
	}
	if err := writeUUIDTag(wr.enc, tagLastTopVisibleEntry, g.LastTopVisibleEntry); err != nil {
		return err
	}
	if err := writeTag(wr.enc, tagName, g.Name); err != nil {
		return err
	}
	if err := writeTag(wr.enc, tagNotes, g.Notes); err != nil {
		return err
	}
	if err := wr.writeTimes(&g.Times); err != nil {
		return err
	}
	for i := range g.Entries {
		if err := wr.writeEntry(&g.Entries[i], stateActive); err != nil {
			return err
		}
	}
	for i := range g.Groups {
		if err := wr.writeGroup(&g.Groups[i]); err != nil {
			return err
		}
	}
	return wr.endElement(tagGroup)
}

func (wr *writer) writeEntry(e *model.Entry, state entryState) error {
	if err := wr.startElement(tagEntry); err != nil {
		return err
	}
	if err := writeUUIDTag(wr.enc, tagUUID, e.UUID); err != nil {
		return err
	}
	if err := wr.writeAutoType(&e.AutoType); err != nil {
		return err
	}
	if err := writeColorTag(wr.enc, tagBackgroundColor, e.BackgroundColor); err != nil {
		return err
	}
	if e.CustomIconUUID != model.ZeroUUID {
		if err := writeUUIDTag(wr.enc, tagCustomIconUUID, e.CustomIconUUID); err != nil {
			return err
		}
	}
	if err := writeColorTag(wr.enc, tagForegroundColor, e.ForegroundColor); err != nil {
		return err
	}
	if err := writeIconTag(wr.enc, tagIconID, e.IconID); err != nil {
		return err
	}
	if err := writeTag(wr.enc, tagOverrideURL, e.OverrideURL); err != nil {
		return err
	}
	if err := writeTag(wr.enc, tagTags, e.Tags); err != nil {
		return err
	}
	if err := wr.writeTimes(&e.Times); err != nil {
		return err
	}
	for _, ref := range e.Binaries {
		if err := wr.writeEntryBinary(ref); err != nil {
			return err
		}
	}
	for _, f := range e.Strings.Fields() {
		if err := wr.writeString(f); err != nil {
			return err
		}
	}
	if state == stateActive && len(e.History) > 0 {
		if err := wr.writeHistory(e.History); err != nil {
			return err
		}
	}
	return wr.endElement(tagEntry)
}

func (wr *writer) writeHistory(history []model.Entry) error {
	if err := wr.startElement(tagHistory); err != nil {
		return err
	}
	for i := range history {
		if err := wr.writeEntry(&history[i], stateHistory); err != nil {
			return err
		}
	}
	return wr.endElement(tagHistory)
}

func (wr *writer) writeAutoType(at *model.AutoType) error {
	if err := wr.startElement(tagAutoType); err != nil {
		return err
	}
	if err := writeInt32Tag(wr.enc, tagDataTransferObfuscation, int32(at.ObfuscationOptions)); err != nil {
		return err
	}
	if err := writeTag(wr.enc, tagDefaultSequence, at.DefaultSequence); err != nil {
		return err
	}
	if err := writeBoolTag(wr.enc, tagEnabled, at.Enabled); err != nil {
		return err
	}
	for _, a := range at.Associations {
		if err := wr.startElement(tagAssociation); err != nil {
			return err
		}
		if err := writeTag(wr.enc, tagWindow, a.Window); err != nil {
			return err
		}
		if err := writeTag(wr.enc, tagKeystrokeSequence, a.KeystrokeSequence); err != nil {
			return err
		}
		if err := wr.endElement(tagAssociation); err != nil {
			return err
		}
	}
	return wr.endElement(tagAutoType)
}

func (wr *writer) writeTimes(times *model.Times) error {
	if err := wr.startElement(tagTimes); err != nil {
		return err
	}
	if err := writeDatetimeTag(wr.enc, tagCreationTime, times.CreationTime); err != nil {
		return err
	}
	if err := writeDatetimeTag(wr.enc, tagExpiryTime, times.ExpiryTime); err != nil {
		return err
	}
	if err := writeBoolTag(wr.enc, tagExpires, times.Expires); err != nil {
		return err
	}
	if err := writeDatetimeTag(wr.enc, tagLastAccessTime, times.LastAccessTime); err != nil {
		return err
	}
	if err := writeDatetimeTag(wr.enc, tagLastModificationTime, times.LastModificationTime); err != nil {
		return err
	}
	if err := writeDatetimeTag(wr.enc, tagLocationChanged, times.LocationChanged); err != nil {
		return err
	}
	if err := writeInt64Tag(wr.enc, tagUsageCount, times.UsageCount); err != nil {
		return err
	}
	return wr.endElement(tagTimes)
}

// writeString emits an Entry String field, encrypting the value and marking
// Value Protected="True" when the field is protected. The legacy
// ProtectInMemory attribute is never written.
func (wr *writer) writeString(f model.StringField) error {
	if err := wr.startElement(tagString); err != nil {
		return err
	}
	if err := writeTag(wr.enc, tagKey, f.Key); err != nil {
		return err
	}
	if f.Protected {
		cipherText := wr.cipher.Process([]byte(f.Value))
		attrs := []xml.Attr{{Name: xml.Name{Local: attrProtected}, Value: "True"}}
		if err := writeStartEnd(wr.enc, tagValue, attrs, base64.StdEncoding.EncodeToString(cipherText)); err != nil {
			return err
		}
	} else {
		if err := writeTag(wr.enc, tagValue, f.Value); err != nil {
			return err
		}
	}
	return wr.endElement(tagString)
}

// writeEntryBinary emits an Entry Binary field as a Ref into the database's
// shared binary pool; inline Plain/Protected binary values are not produced
// by this writer (see xmlkdbx/reader.go's readEntryBinary for how inline
// values encountered on read are folded into the pool instead). A ref whose
// id is absent from the pool would produce a file other readers cannot
// resolve, so it fails the save instead.
func (wr *writer) writeEntryBinary(ref model.BinaryRef) error {
	if wr.binaries == nil {
		return MissingBinaryRef{ID: uint32(ref.ID)}
	}
	if _, ok := wr.binaries.Get(ref.ID); !ok {
		return MissingBinaryRef{ID: uint32(ref.ID)}
	}
	if err := wr.startElement(tagBinary); err != nil {
		return err
	}
	if err := writeTag(wr.enc, tagKey, ref.Key); err != nil {
		return err
	}
	attrs := []xml.Attr{{Name: xml.Name{Local: attrRef}, Value: fmt.Sprintf("%d", ref.ID)}}
	if err := writeStartEnd(wr.enc, tagValue, attrs, ""); err != nil {
		return err
	}
	return wr.endElement(tagBinary)
}
