package model

import "fmt"

// Icon identifies one of the standard KeePass icon glyphs by its integer id
// (0 through 68 inclusive).
type Icon int32

// The standard KeePass icon set, in id order.
const (
	IconKey Icon = iota
	IconWorld
	IconWarning
	IconServer
	IconMarkedDirectory
	IconUserCommunication
	IconParts
	IconNotepad
	IconWorldSocket
	IconIdentity
	IconPaperReady
	IconDigicam
	IconIRCommunication
	IconMultipleKeys
	IconEnergy
	IconScanner
	IconWorldStar
	IconCDRom
	IconMonitor
	IconEmail
	IconConfiguration
	IconClipboardReady
	IconPaperNew
	IconScreen
	IconEnergyCareful
	IconInbox
	IconDisk
	IconDrive
	IconQuickTime
	IconEncryptedTerminal
	IconConsole
	IconPrinter
	IconIcons
	IconRun
	IconSettings
	IconWorldComputer
	IconArchive
	IconBanking
	IconSmb
	IconClock
	IconEmailSearch
	IconPaperFlag
	IconMemory
	IconRecycleBin
	IconNote
	IconExpired
	IconInfo
	IconPackage
	IconFolder
	IconFolderOpen
	IconFolderPackage
	IconLockOpen
	IconPaperLocked
	IconChecked
	IconPen
	IconThumbnail
	IconBook
	IconListing
	IconUserKey
	IconTool
	IconHome
	IconStar
	IconTux
	IconFeather
	IconApple
	IconWikipedia
	IconMoney
	IconCertificate
	IconPhone
)

// MaxIcon is the highest valid Icon id.
const MaxIcon = IconPhone

// NewIcon validates id against the fixed 0..=68 icon range.
func NewIcon(id int32) (Icon, error) {
	if id < int32(IconKey) || id > int32(MaxIcon) {
		return 0, InvalidIconID{ID: id}
	}
	return Icon(id), nil
}

// InvalidIconID is returned when an icon id falls outside 0..=68.
type InvalidIconID struct {
	ID int32
}

func (e InvalidIconID) Error() string {
	return fmt.Sprintf("model: invalid icon id %d", e.ID)
}
