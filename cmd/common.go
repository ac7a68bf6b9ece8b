package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/go-i2p/kdbxgo/kdbx"
	"github.com/go-i2p/kdbxgo/keyfile"
	"github.com/go-i2p/kdbxgo/model"
)

// readPassword reads a single line from stdin, used when --password is not
// supplied on the command line.
func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line, nil
}

// buildCompositeKey derives a kdbx.CompositeKey from the password and/or
// key-file path in use, prompting for the password on stdin if it was not
// supplied on the command line and no key file was given either.
func buildCompositeKey(password, keyFilePath string) (*kdbx.CompositeKey, error) {
	var kf *keyfile.KeyFile
	if keyFilePath != "" {
		f, err := os.Open(keyFilePath)
		if err != nil {
			return nil, fmt.Errorf("open key file %s: %w", keyFilePath, err)
		}
		loaded, err := keyfile.Open(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse key file %s: %w", keyFilePath, err)
		}
		kf = loaded
	}

	if password == "" && kf == nil {
		p, err := readPassword()
		if err != nil {
			return nil, err
		}
		password = p
	}

	switch {
	case password != "" && kf != nil:
		return kdbx.CompositeKeyFromBoth(password, kf), nil
	case kf != nil:
		return kdbx.CompositeKeyFromKeyFile(kf), nil
	default:
		return kdbx.CompositeKeyFromPassword(password), nil
	}
}

// openDatabaseFile opens the vault at path with the given password/key-file,
// a small convenience wrapper shared by inspect, export, and serve.
func openDatabaseFile(path, password, keyFilePath string) (*model.Database, error) {
	key, err := buildCompositeKey(password, keyFilePath)
	if err != nil {
		return nil, err
	}
	defer key.Clear()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	db, err := kdbx.Open(f, key)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	return db, nil
}

// iconHistogram counts how many entries use each icon ID across the whole
// group/entry tree.
func iconHistogram(db *model.Database) map[int]int {
	counts := make(map[int]int)
	var walk func(g *model.Group)
	walk = func(g *model.Group) {
		for i := range g.Entries {
			counts[int(g.Entries[i].IconID)]++
		}
		for i := range g.Groups {
			walk(&g.Groups[i])
		}
	}
	walk(&db.Root)
	return counts
}

// treeCounts reports the total number of groups and entries in db's tree,
// including db.Root itself.
func treeCounts(db *model.Database) (groups, entries int) {
	var walk func(g *model.Group)
	walk = func(g *model.Group) {
		groups++
		entries += len(g.Entries)
		for i := range g.Groups {
			walk(&g.Groups[i])
		}
	}
	walk(&db.Root)
	return groups, entries
}
