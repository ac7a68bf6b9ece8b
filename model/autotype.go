package model

// Obfuscation selects how KeePass types an Entry's auto-type sequence into
// the target window.
type Obfuscation int

const (
	ObfuscationNone Obfuscation = iota
	ObfuscationUseClipboard
)

// Association binds an auto-type sequence to a specific target window title.
type Association struct {
	Window            string
	KeystrokeSequence string
}

// AutoType holds an Entry's auto-type configuration.
type AutoType struct {
	Enabled            bool
	ObfuscationOptions Obfuscation
	DefaultSequence    string
	Associations       []Association
}

// NewAutoType returns the defaults a freshly created Entry uses: enabled,
// no obfuscation, no default sequence or associations.
func NewAutoType() AutoType {
	return AutoType{
		Enabled:            true,
		ObfuscationOptions: ObfuscationNone,
	}
}
