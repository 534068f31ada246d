package alttree

import (
	"fmt"

	"github.com/pop-chain/popcore/blocktree"
	"github.com/pop-chain/popcore/entities"
	"github.com/pop-chain/popcore/params"
	"github.com/pop-chain/popcore/validation"
)

// AddPayloads implements §4.5's addPayloads contract: validates and
// indexes every ATV/VTB in ap.Data against the ALT block identified by
// ap.ContainingAltHash, raising it to VALID_PAYLOADS on success.
func (t *AltTree) AddPayloads(ap entities.AltPayloads) error {
	containerID := blocktree.ID(ap.ContainingAltHash)
	container, ok := t.alt.GetBlockIndex(containerID)
	if !ok {
		return validation.New(ap.ContainingAltHash, validation.KindUnknownContainingBlock, "addPayloads: unknown container")
	}
	if container.Status.IsFailed() {
		return validation.New(ap.ContainingAltHash, validation.KindBlockFailedBlock, "addPayloads: container is failed")
	}

	applied, err := t.applyPopData(containerID, ap.Data)
	if err != nil {
		return err
	}

	rec := t.containers[containerID]
	if rec == nil {
		rec = &containerRecord{}
		t.containers[containerID] = rec
	}
	rec.raw = append(rec.raw, ap)
	rec.applied = append(rec.applied, applied...)

	container.Status |= blocktree.StatusValidPayloads

	if err := t.commitPayloads(containerID, ap, applied); err != nil {
		return err
	}
	return t.maybeReorg(container)
}

// applyPopData applies one PopData bundle's VTBs and ATVs, in that order,
// against an already-known container. On any failure it unwinds every
// temp extension and endorsement this call made and returns BAD_PAYLOAD
// (§4.5 step 2), leaving no partial state behind.
func (t *AltTree) applyPopData(containerID blocktree.ID, data entities.PopData) ([]appliedPayload, error) {
	var applied []appliedPayload
	rollback := func() {
		for i := len(applied) - 1; i >= 0; i-- {
			t.unapplyOne(containerID, applied[i])
		}
	}

	if _, err := t.extendVbkContext(data.Context); err != nil {
		return nil, err
	}

	for _, vtb := range data.Vtbs {
		ap, err := t.applyVTB(containerID, vtb)
		if err != nil {
			rollback()
			return nil, err
		}
		applied = append(applied, ap)
	}
	for _, atv := range data.Atvs {
		ap, err := t.applyATV(containerID, atv)
		if err != nil {
			rollback()
			return nil, err
		}
		applied = append(applied, ap)
	}
	return applied, nil
}

func (t *AltTree) applyVTB(containerID blocktree.ID, vtb entities.VTB) (appliedPayload, error) {
	var zero appliedPayload
	payloadID := vtb.ID(t.Crypto)
	if !t.cache.WasChecked(payloadID) {
		if err := validation.CheckVTBStructure(vtb, t.Crypto); err != nil {
			return zero, err
		}
		t.cache.MarkChecked(payloadID)
	}

	newVbk, err := t.extendVbkContext(append(append([]entities.VbkBlockHeader{}, vtb.Context...), vtb.ContainingBlock, vtb.Transaction.EndorsedVbkBlock))
	if err != nil {
		return zero, err
	}
	newBtc, err := t.extendBtcContext(vtb.Transaction.BlockOfProofContext, vtb.Transaction.BlockOfProof)
	if err != nil {
		return zero, err
	}

	containingID := params.VbkShortIDToTreeID(vtb.ContainingBlock.Hash(t.Crypto).Short())
	endorsedID := params.VbkShortIDToTreeID(vtb.Transaction.EndorsedVbkBlock.Hash(t.Crypto).Short())
	btcID := blocktree.ID(vtb.Transaction.BlockOfProof.Hash(t.Crypto))

	containingIdx, ok := t.vbk.GetBlockIndex(containingID)
	if !ok {
		return zero, validation.New(entities.Hash256(containingID), validation.KindUnknownContainingBlock, "vtb: containing block not in vbk tree")
	}
	endorsedIdx, ok := t.vbk.GetBlockIndex(endorsedID)
	if !ok {
		return zero, validation.New(entities.Hash256(endorsedID), validation.KindUnknownContainingBlock, "vtb: endorsed block not in vbk tree")
	}
	btcIdx, ok := t.btc.GetBlockIndex(btcID)
	if !ok {
		return zero, validation.New(entities.Hash256(btcID), validation.KindUnknownBlockOfProof, "vtb: block_of_proof not in btc tree")
	}

	txID := vtb.Transaction.TxID(t.Crypto)
	id := entities.ComputeVbkEndorsementID(t.Crypto, txID, vtb.Transaction.EndorsedVbkBlock.Hash(t.Crypto), vtb.ContainingBlock.Hash(t.Crypto), vtb.Transaction.BlockOfProof.Hash(t.Crypto))
	if _, dup := t.vbkEndorsements[id]; dup {
		return zero, validation.New(entities.Hash256(id), validation.KindDuplicateID, "vtb: duplicate endorsement id")
	}

	endorsement := entities.VbkEndorsement{
		ID:               id,
		TxID:             txID,
		EndorsedHash:     vtb.Transaction.EndorsedVbkBlock.Hash(t.Crypto),
		ContainingHash:   vtb.ContainingBlock.Hash(t.Crypto),
		BlockOfProofHash: vtb.Transaction.BlockOfProof.Hash(t.Crypto),
	}
	t.vbkEndorsements[id] = endorsement

	containingIdx.ContainingEndorsements = append(containingIdx.ContainingEndorsements, blocktree.EndorsementID(id))
	endorsedIdx.EndorsedBy = append(endorsedIdx.EndorsedBy, blocktree.EndorsementID(id))
	btcIdx.RefCounter++

	return appliedPayload{
		payloadID: payloadID,
		endorsement: appliedEndorsement{
			kind:         endorsementVbk,
			id:           id,
			endorsedID:   endorsedID,
			containingID: containingID,
			pinnedBTCID:  btcID,
			newVbkIDs:    newVbk,
			newBtcIDs:    newBtc,
		},
	}, nil
}

func (t *AltTree) applyATV(containerID blocktree.ID, atv entities.ATV) (appliedPayload, error) {
	var zero appliedPayload
	payloadID := atv.ID(t.Crypto)
	if !t.cache.WasChecked(payloadID) {
		if err := validation.CheckATVStructure(atv, t.Crypto); err != nil {
			return zero, err
		}
		t.cache.MarkChecked(payloadID)
	}

	newVbk, err := t.extendVbkContext(append(append([]entities.VbkBlockHeader{}, atv.Context...), atv.ContainingBlock))
	if err != nil {
		return zero, err
	}

	containingID := params.VbkShortIDToTreeID(atv.ContainingBlock.Hash(t.Crypto).Short())
	containingIdx, ok := t.vbk.GetBlockIndex(containingID)
	if !ok {
		return zero, validation.New(entities.Hash256(containingID), validation.KindUnknownContainingBlock, "atv: containing block not in vbk tree")
	}

	endorsedAlt, err := entities.AltBlockHeaderFromVbkEncoding(atv.Transaction.PublicationData.Header)
	if err != nil {
		return zero, validation.New(atv.ID(t.Crypto), validation.KindBadSignature, "atv: publication data does not decode to an alt header")
	}
	endorsedID := blocktree.ID(endorsedAlt.BlockHash)
	endorsedIdx, ok := t.alt.GetBlockIndex(endorsedID)
	if !ok {
		return zero, validation.New(endorsedAlt.BlockHash, validation.KindUnknownContainingBlock, "atv: endorsed alt block unknown")
	}

	txID := atv.Transaction.TxID(t.Crypto)
	id := entities.ComputeAltEndorsementID(t.Crypto, txID, endorsedAlt.BlockHash, atv.ContainingBlock.Hash(t.Crypto))
	if _, dup := t.altEndorsements[id]; dup {
		return zero, validation.New(entities.Hash256(id), validation.KindDuplicateID, "atv: duplicate endorsement id")
	}

	endorsement := entities.AltEndorsement{
		ID:             id,
		TxID:           txID,
		EndorsedHash:   endorsedAlt.BlockHash,
		ContainingHash: atv.ContainingBlock.Hash(t.Crypto),
	}
	t.altEndorsements[id] = endorsement

	containingIdx.ContainingEndorsements = append(containingIdx.ContainingEndorsements, blocktree.EndorsementID(id))
	endorsedIdx.EndorsedBy = append(endorsedIdx.EndorsedBy, blocktree.EndorsementID(id))

	return appliedPayload{
		payloadID: payloadID,
		endorsement: appliedEndorsement{
			kind:         endorsementAlt,
			id:           id,
			endorsedID:   endorsedID,
			containingID: containingID,
			newVbkIDs:    newVbk,
		},
	}, nil
}

// extendVbkContext accepts every header not already known to the VBK
// tree, in order, and returns the ids of the ones it actually inserted
// (so a failed payload can retract exactly those and nothing else).
func (t *AltTree) extendVbkContext(headers []entities.VbkBlockHeader) ([]blocktree.ID, error) {
	var inserted []blocktree.ID
	for _, h := range headers {
		id := params.VbkShortIDToTreeID(h.Hash(t.Crypto).Short())
		if t.vbk.Contains(id) {
			continue
		}
		if _, err := t.vbk.AcceptBlock(h); err != nil {
			for i := len(inserted) - 1; i >= 0; i-- {
				_ = t.vbk.RemoveLeaf(inserted[i])
			}
			return nil, validation.New(entities.Hash256(id), validation.KindNoParent, fmt.Sprintf("vbk context extension: %v", err))
		}
		inserted = append(inserted, id)
	}
	return inserted, nil
}

// extendBtcContext accepts every BTC context header plus the block of
// proof itself into the BTC tree, returning the ids it inserted. Each
// header's height is derived from its already-known parent, since BTC
// headers arriving as endorsement context carry no explicit height field
// of their own (unlike VBK/ALT).
func (t *AltTree) extendBtcContext(context []entities.BtcBlockHeader, blockOfProof entities.BtcBlockHeader) ([]blocktree.ID, error) {
	var inserted []blocktree.ID
	all := append(append([]entities.BtcBlockHeader{}, context...), blockOfProof)
	for _, h := range all {
		id := blocktree.ID(h.Hash(t.Crypto))
		if t.btc.Contains(id) {
			continue
		}
		prev, ok := t.btc.GetBlockIndex(blocktree.ID(h.PreviousHash))
		if !ok {
			for i := len(inserted) - 1; i >= 0; i-- {
				_ = t.btc.RemoveLeaf(inserted[i])
			}
			return nil, validation.New(entities.Hash256(id), validation.KindUnknownBlockOfProof, "btc context extension: unknown parent")
		}
		if _, err := t.btc.AcceptBlock(params.BTCHeader{BtcBlockHeader: h, Height_: prev.Height + 1}); err != nil {
			for i := len(inserted) - 1; i >= 0; i-- {
				_ = t.btc.RemoveLeaf(inserted[i])
			}
			return nil, validation.New(entities.Hash256(id), validation.KindUnknownBlockOfProof, fmt.Sprintf("btc context extension: %v", err))
		}
		inserted = append(inserted, id)
	}
	return inserted, nil
}

// RemovePayloads implements the embedder contract of the same name: drops
// every payload previously applied to containerAltHash, unapplying their
// endorsement side effects exactly as setState's unapply phase would, and
// forgets their structural-validation memoization.
func (t *AltTree) RemovePayloads(containerAltHash entities.Hash256) error {
	containerID := blocktree.ID(containerAltHash)
	rec, ok := t.containers[containerID]
	if !ok {
		return nil
	}
	for i := len(rec.applied) - 1; i >= 0; i-- {
		t.unapplyOne(containerID, rec.applied[i])
		t.cache.Forget(rec.applied[i].payloadID)
	}
	delete(t.containers, containerID)
	if container, ok := t.alt.GetBlockIndex(containerID); ok {
		container.Status &^= blocktree.StatusValidPayloads
	}
	return nil
}

// unapplyOne exactly reverses one appliedPayload: removes its endorsement
// from the index, decrements pinned ref counters, and retracts any VBK
// blocks it alone introduced (§4.5 step 2, §8's reversibility property).
func (t *AltTree) unapplyOne(containerID blocktree.ID, ap appliedPayload) {
	switch ap.endorsement.kind {
	case endorsementVbk:
		delete(t.vbkEndorsements, ap.endorsement.id)
		if idx, ok := t.vbk.GetBlockIndex(ap.endorsement.containingID); ok {
			idx.ContainingEndorsements = removeEndorsementID(idx.ContainingEndorsements, blocktree.EndorsementID(ap.endorsement.id))
		}
		if idx, ok := t.vbk.GetBlockIndex(ap.endorsement.endorsedID); ok {
			idx.EndorsedBy = removeEndorsementID(idx.EndorsedBy, blocktree.EndorsementID(ap.endorsement.id))
		}
		if idx, ok := t.btc.GetBlockIndex(ap.endorsement.pinnedBTCID); ok && idx.RefCounter > 0 {
			idx.RefCounter--
		}
	case endorsementAlt:
		delete(t.altEndorsements, ap.endorsement.id)
		if idx, ok := t.vbk.GetBlockIndex(ap.endorsement.containingID); ok {
			idx.ContainingEndorsements = removeEndorsementID(idx.ContainingEndorsements, blocktree.EndorsementID(ap.endorsement.id))
		}
		if idx, ok := t.alt.GetBlockIndex(ap.endorsement.endorsedID); ok {
			idx.EndorsedBy = removeEndorsementID(idx.EndorsedBy, blocktree.EndorsementID(ap.endorsement.id))
		}
	}
	for i := len(ap.endorsement.newVbkIDs) - 1; i >= 0; i-- {
		_ = t.vbk.RemoveLeaf(ap.endorsement.newVbkIDs[i])
	}
	for i := len(ap.endorsement.newBtcIDs) - 1; i >= 0; i-- {
		_ = t.btc.RemoveLeaf(ap.endorsement.newBtcIDs[i])
	}
}

func removeEndorsementID(ids []blocktree.EndorsementID, target blocktree.EndorsementID) []blocktree.EndorsementID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
