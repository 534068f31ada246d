// Command popcore-node is a minimal embedder skeleton demonstrating how to
// bootstrap an AltTree, attach bbolt-backed persistence, and grow an ALT
// chain, the way the teacher's cmd/rubin-node wires node.Config and a
// disk-backed chainstate around its own consensus engine. Every run
// bootstraps from genesis in memory; state written by earlier runs is not
// read back. It mines the BTC and VBK genesis headers at regtest
// difficulty locally rather than syncing from peers, since AltTree has no
// networking layer of its own (§1).
package main

import (
	"flag"
	"log"
	"math/big"
	"os"

	"github.com/pop-chain/popcore/alttree"
	"github.com/pop-chain/popcore/crypto"
	"github.com/pop-chain/popcore/entities"
	"github.com/pop-chain/popcore/params"
	"github.com/pop-chain/popcore/storage/bolt"
)

// regtestBits is a low difficulty target, chosen so genesis headers mine
// locally without a real mining rig: about one nonce in 65,536 satisfies
// it.
const regtestBits uint32 = 0x1f00ffff

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("popcore-node", flag.ContinueOnError)
	dataDir := fs.String("datadir", "popcore-data", "directory for the bbolt-backed store")
	altBlocks := fs.Int("alt-blocks", 3, "number of ALT blocks to grow the demo chain by")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := os.MkdirAll(*dataDir, 0o750); err != nil {
		log.Printf("datadir create failed: %v", err)
		return 2
	}

	store, err := bolt.Open(*dataDir)
	if err != nil {
		log.Printf("store open failed: %v", err)
		return 2
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			log.Printf("store close failed: %v", cerr)
		}
	}()

	crypt := crypto.StdProvider{}
	tree := alttree.New(crypt)
	tree.AttachStore(store)

	btcGenesis := mineBtc(entities.BtcBlockHeader{Timestamp: 1231006505}, crypt)
	vbkGenesis := mineVbk(entities.VbkBlockHeader{Timestamp: 1466191200}, crypt)
	altGenesis := entities.AltBlockHeader{Height: 0, Timestamp: 1600000000}
	altGenesis.BlockHash[31] = 0x01

	if err := tree.Bootstrap(altGenesis, params.BTCHeader{BtcBlockHeader: btcGenesis, Height_: 0}, vbkGenesis); err != nil {
		log.Printf("bootstrap failed: %v", err)
		return 1
	}
	log.Printf("bootstrapped: alt_genesis=%x btc_genesis=%x vbk_genesis=%x", altGenesis.BlockHash, btcGenesis.Hash(crypt), vbkGenesis.Hash(crypt))

	prev := altGenesis
	for i := 1; i <= *altBlocks; i++ {
		child := entities.AltBlockHeader{
			PreviousHash: prev.Hash(),
			Height:       prev.Height + 1,
			Timestamp:    prev.Timestamp + 1,
		}
		child.BlockHash = childHash(prev.BlockHash, uint32(i))
		idx, err := tree.AcceptBlock(child)
		if err != nil {
			log.Printf("accept block %d failed: %v", i, err)
			return 1
		}
		log.Printf("accepted alt block: height=%d hash=%x chain_work=%s", idx.Height, idx.ID, idx.ChainWork.String())
		prev = child
	}

	chain := tree.GetBestChain()
	log.Printf("active chain length: %d", len(chain))
	for _, idx := range chain {
		log.Printf("  height=%d id=%x", idx.Height, idx.ID)
	}
	return 0
}

// childHash derives a deterministic, distinct ALT hash for each demo block
// without reaching for a real content hash, since ALT hashes are opaque to
// the core (§3) and the embedder owns their derivation.
func childHash(prevHash entities.Hash256, index uint32) entities.Hash256 {
	var out entities.Hash256
	copy(out[:], prevHash[:])
	out[28] ^= byte(index)
	out[29] ^= byte(index >> 8)
	out[31] = byte(index)
	return out
}

func mineBtc(h entities.BtcBlockHeader, p crypto.Provider) entities.BtcBlockHeader {
	h.Bits = regtestBits
	target, _ := entities.CompactToTarget(regtestBits)
	for nonce := uint32(0); ; nonce++ {
		h.Nonce = nonce
		hash := h.Hash(p)
		if new(big.Int).SetBytes(hash[:]).Cmp(target) < 0 {
			return h
		}
	}
}

func mineVbk(h entities.VbkBlockHeader, p crypto.Provider) entities.VbkBlockHeader {
	h.Difficulty = regtestBits
	target, _ := entities.CompactToTarget(regtestBits)
	for nonce := uint32(0); ; nonce++ {
		h.Nonce = nonce
		full := p.SHA256(h.ToVbkEncoding())
		if new(big.Int).SetBytes(full[:]).Cmp(target) < 0 {
			return h
		}
	}
}
