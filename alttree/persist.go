package alttree

import (
	"fmt"

	"github.com/pop-chain/popcore/blocktree"
	"github.com/pop-chain/popcore/entities"
	"github.com/pop-chain/popcore/storage"
)

// AttachStore binds a storage collaborator to the coordinator (§6).
// After this call Bootstrap, AcceptBlock and AddPayloads stage their
// header, payload and endorsement writes onto a storage.Batch and commit
// it atomically before returning success. SetState writes only the
// manifest tip, and only when the store has one (commitActiveTip);
// RemovePayloads writes nothing. AttachStore is optional — an AltTree with no
// store behaves exactly as before, matching §1's "the core does not
// itself persist state".
func (t *AltTree) AttachStore(kv storage.KV) {
	t.store = kv
}

// commitHeaders stages one Put per header into its bucket and writes the
// batch atomically. Used by Bootstrap and AcceptBlock, where the set of
// mutations is just "one or more headers became known".
func (t *AltTree) commitHeaders(puts ...headerPut) error {
	if t.store == nil {
		return nil
	}
	b := t.store.NewBatch()
	for _, p := range puts {
		b.Put(p.bucket, p.key[:], p.value)
	}
	if err := b.Write(); err != nil {
		return fmt.Errorf("alttree: persist: %w", err)
	}
	return nil
}

type headerPut struct {
	bucket string
	key    blocktree.ID
	value  []byte
}

// commitPayloads stages the raw PopData bundle and the endorsement
// records AddPayloads just indexed, all in one batch, so a crash between
// accepting a payload and persisting it cannot leave the in-memory index
// ahead of disk.
func (t *AltTree) commitPayloads(containerID blocktree.ID, ap entities.AltPayloads, applied []appliedPayload) error {
	if t.store == nil {
		return nil
	}
	b := t.store.NewBatch()
	b.Put(storage.BucketPayloads, containerID[:], ap.ToVbkEncoding())
	for _, a := range applied {
		switch a.endorsement.kind {
		case endorsementVbk:
			e, ok := t.vbkEndorsements[a.endorsement.id]
			if !ok {
				continue
			}
			b.Put(storage.BucketVbkEndorsements, e.ID[:], e.ToVbkEncoding())
		case endorsementAlt:
			e, ok := t.altEndorsements[a.endorsement.id]
			if !ok {
				continue
			}
			b.Put(storage.BucketAltEndorsements, e.ID[:], e.ToVbkEncoding())
		}
	}
	if err := b.Write(); err != nil {
		return fmt.Errorf("alttree: persist payloads: %w", err)
	}
	return nil
}

// commitActiveTip writes the manifest tip pointer after a successful
// setState, mirroring the teacher's "advance manifest to commit point"
// step at the end of ReorgToTip. Only bolt-backed stores expose this; a
// generic storage.KV has no notion of a single mutable pointer, so this
// is a best-effort type assertion rather than part of the KV contract.
func (t *AltTree) commitActiveTip(tipHash entities.Hash256) error {
	type manifestWriter interface {
		WriteManifest(tip [32]byte) error
	}
	mw, ok := t.store.(manifestWriter)
	if !ok {
		return nil
	}
	if err := mw.WriteManifest([32]byte(tipHash)); err != nil {
		return fmt.Errorf("alttree: persist manifest: %w", err)
	}
	return nil
}
