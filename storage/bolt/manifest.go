package bolt

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pop-chain/popcore/internal/fsutil"
)

// SchemaVersionV1 is the only manifest schema this adapter understands.
const SchemaVersionV1 uint32 = 1

// Manifest is the mutable, crash-safe commit point for the active ALT
// tip — the only piece of coordinator state that lives outside bbolt's
// MVCC pages, mirroring the teacher's node/store/manifest.go split
// between transactional entity storage and a small JSON sidecar for the
// tip pointer.
type Manifest struct {
	SchemaVersion uint32 `json:"schema_version"`
	ActiveTipHex  string `json:"active_tip_hash"`
}

func manifestPath(dir string) string {
	return filepath.Join(dir, "MANIFEST.json")
}

// ReadManifest loads the manifest, or (nil, nil) if none has been
// written yet (a fresh, unbootstrapped store).
func (s *Store) ReadManifest() (*Manifest, error) {
	b, err := fsutil.ReadFile(manifestPath(s.dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("bolt: read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("bolt: manifest json: %w", err)
	}
	if m.SchemaVersion > SchemaVersionV1 {
		return nil, fmt.Errorf("bolt: manifest schema_version %d > supported %d", m.SchemaVersion, SchemaVersionV1)
	}
	return &m, nil
}

// WriteManifest atomically persists the active ALT tip hash. Called once
// per successful setState, which stages no entity writes of its own; the
// atomic replace means a crash leaves the manifest pointing at either the
// prior tip or the new one, never a torn state.
func (s *Store) WriteManifest(activeTipHash [32]byte) error {
	m := Manifest{
		SchemaVersion: SchemaVersionV1,
		ActiveTipHex:  hex.EncodeToString(activeTipHash[:]),
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("bolt: manifest json: %w", err)
	}
	b = append(b, '\n')
	return fsutil.WriteFileAtomic(manifestPath(s.dir), b, 0o600)
}
