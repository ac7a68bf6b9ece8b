// Package xmlkdbx implements the KDBX 3.1 XML envelope: the <KeePassFile>
// document that carries the group/entry tree once the outer header and
// payload framing have been peeled away. Reading and writing are both
// event-driven walks of the document (via encoding/xml's Decoder/Encoder
// token stream, not struct-tag marshaling) because the inner Salsa20 cipher
// must advance in strict document pre-order as protected values are
// encountered, and a single cipher state is threaded through the whole
// traversal.
package xmlkdbx

// Element and attribute names used throughout the KDBX 3.1 XML schema.
const (
	tagKeePassFile = "KeePassFile"
	tagMeta        = "Meta"
	tagRoot        = "Root"

	tagGenerator                  = "Generator"
	tagHeaderHash                 = "HeaderHash"
	tagDatabaseName               = "DatabaseName"
	tagDatabaseNameChanged        = "DatabaseNameChanged"
	tagDatabaseDescription        = "DatabaseDescription"
	tagDatabaseDescriptionChanged = "DatabaseDescriptionChanged"
	tagDefaultUserName            = "DefaultUserName"
	tagDefaultUserNameChanged     = "DefaultUserNameChanged"
	tagMaintenanceHistoryDays     = "MaintenanceHistoryDays"
	tagColor                      = "Color"
	tagMasterKeyChanged           = "MasterKeyChanged"
	tagMasterKeyChangeRec         = "MasterKeyChangeRec"
	tagMasterKeyChangeForce       = "MasterKeyChangeForce"
	tagMemoryProtection           = "MemoryProtection"
	tagProtectTitle               = "ProtectTitle"
	tagProtectUserName            = "ProtectUserName"
	tagProtectPassword            = "ProtectPassword"
	tagProtectURL                 = "ProtectURL"
	tagProtectNotes               = "ProtectNotes"
	tagCustomIcons                = "CustomIcons"
	tagIcon                       = "Icon"
	tagUUID                       = "UUID"
	tagData                       = "Data"
	tagRecycleBinEnabled          = "RecycleBinEnabled"
	tagRecycleBinUUID             = "RecycleBinUUID"
	tagRecycleBinChanged          = "RecycleBinChanged"
	tagEntryTemplatesGroup        = "EntryTemplatesGroup"
	tagEntryTemplatesGroupChanged = "EntryTemplatesGroupChanged"
	tagLastSelectedGroup          = "LastSelectedGroup"
	tagLastTopVisibleGroup        = "LastTopVisibleGroup"
	tagHistoryMaxItems            = "HistoryMaxItems"
	tagHistoryMaxSize             = "HistoryMaxSize"
	tagBinaries                   = "Binaries"
	tagBinary                     = "Binary"
	tagCustomData                 = "CustomData"
	tagItem                       = "Item"
	tagKey                        = "Key"
	tagValue                      = "Value"

	tagGroup                = "Group"
	tagEntry                = "Entry"
	tagName                 = "Name"
	tagNotes                = "Notes"
	tagIconID               = "IconID"
	tagCustomIconUUID       = "CustomIconUUID"
	tagTimes                = "Times"
	tagCreationTime         = "CreationTime"
	tagLastModificationTime = "LastModificationTime"
	tagLastAccessTime       = "LastAccessTime"
	tagExpiryTime           = "ExpiryTime"
	tagExpires              = "Expires"
	tagUsageCount           = "UsageCount"
	tagLocationChanged      = "LocationChanged"
	tagIsExpanded           = "IsExpanded"
	tagDefaultAutoTypeSeq   = "DefaultAutoTypeSequence"
	tagEnableAutoType       = "EnableAutoType"
	tagEnableSearching      = "EnableSearching"
	tagLastTopVisibleEntry  = "LastTopVisibleEntry"

	tagForegroundColor         = "ForegroundColor"
	tagBackgroundColor         = "BackgroundColor"
	tagOverrideURL             = "OverrideURL"
	tagTags                    = "Tags"
	tagString                  = "String"
	tagAutoType                = "AutoType"
	tagEnabled                 = "Enabled"
	tagDataTransferObfuscation = "DataTransferObfuscation"
	tagDefaultSequence         = "DefaultSequence"
	tagAssociation             = "Association"
	tagWindow                  = "Window"
	tagKeystrokeSequence       = "KeystrokeSequence"
	tagHistory                 = "History"

	attrProtected       = "Protected"
	attrProtectInMemory = "ProtectInMemory"
	attrRef             = "Ref"
	attrID              = "ID"
	attrCompressed      = "Compressed"
)
