package bolt

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/pop-chain/popcore/storage"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBatchWriteIsAtomicAndVisible(t *testing.T) {
	s := openTest(t)

	b := s.NewBatch()
	b.Put(storage.BucketALTHeaders, []byte("k1"), []byte("v1"))
	b.Put(storage.BucketALTHeaders, []byte("k2"), []byte("v2"))
	if err := b.Write(); err != nil {
		t.Fatalf("write: %v", err)
	}

	v, ok, err := s.Get(storage.BucketALTHeaders, []byte("k1"))
	if err != nil || !ok || !bytes.Equal(v, []byte("v1")) {
		t.Fatalf("get k1 = %q, %v, %v", v, ok, err)
	}
	v, ok, err = s.Get(storage.BucketALTHeaders, []byte("k2"))
	if err != nil || !ok || !bytes.Equal(v, []byte("v2")) {
		t.Fatalf("get k2 = %q, %v, %v", v, ok, err)
	}
}

func TestBatchUnwrittenStagesNothing(t *testing.T) {
	s := openTest(t)

	b := s.NewBatch()
	b.Put(storage.BucketALTHeaders, []byte("k"), []byte("v"))
	// Never call Write.

	_, ok, err := s.Get(storage.BucketALTHeaders, []byte("k"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("expected unwritten batch to leave no trace")
	}
}

func TestDeleteRemovesKey(t *testing.T) {
	s := openTest(t)

	b := s.NewBatch()
	b.Put(storage.BucketALTHeaders, []byte("k"), []byte("v"))
	if err := b.Write(); err != nil {
		t.Fatalf("write: %v", err)
	}

	b2 := s.NewBatch()
	b2.Delete(storage.BucketALTHeaders, []byte("k"))
	if err := b2.Write(); err != nil {
		t.Fatalf("write delete: %v", err)
	}

	_, ok, err := s.Get(storage.BucketALTHeaders, []byte("k"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("expected key to be deleted")
	}
}

func TestIterateVisitsAllPairs(t *testing.T) {
	s := openTest(t)

	b := s.NewBatch()
	want := map[string]string{"a": "1", "b": "2", "c": "3"}
	for k, v := range want {
		b.Put(storage.BucketVBKHeaders, []byte(k), []byte(v))
	}
	if err := b.Write(); err != nil {
		t.Fatalf("write: %v", err)
	}

	it, err := s.Iterate(storage.BucketVBKHeaders)
	if err != nil {
		t.Fatalf("iterate: %v", err)
	}
	defer it.Close()

	got := map[string]string{}
	for it.Next() {
		got[string(it.Key())] = string(it.Value())
	}
	if it.Err() != nil {
		t.Fatalf("iterator err: %v", it.Err())
	}
	if len(got) != len(want) {
		t.Fatalf("got %d pairs, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("key %q: got %q, want %q", k, got[k], v)
		}
	}
}

func TestManifestRoundTrip(t *testing.T) {
	s := openTest(t)

	if m, err := s.ReadManifest(); err != nil || m != nil {
		t.Fatalf("expected no manifest yet, got %+v, %v", m, err)
	}

	var tip [32]byte
	tip[0] = 0xAB
	if err := s.WriteManifest(tip); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	m, err := s.ReadManifest()
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if m == nil {
		t.Fatalf("expected manifest after write")
	}
	if want := hex.EncodeToString(tip[:]); m.ActiveTipHex != want {
		t.Fatalf("unexpected tip hex: got %q, want %q", m.ActiveTipHex, want)
	}
}
