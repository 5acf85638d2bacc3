package orgchart

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/turtacn/CohortMap/internal/domain/hierarchy"
)

// DefaultSessionID names the dataset loaded from configured file paths.
// Requests without a session fall back to it.
const DefaultSessionID = "default"

// Dataset is the pair of raw input tables one session works on.  Every view
// is recomputed from it.
type Dataset struct {
	ID       string          `json:"id"`
	Interns  hierarchy.Input `json:"interns"`
	Leads    hierarchy.Input `json:"leads"`
	Digest   string          `json:"digest"`
	LoadedAt time.Time       `json:"loaded_at"`
}

// Digest hashes the raw payloads of both tables.  A zero byte separates them
// so moving bytes across the boundary changes the hash.
func Digest(interns, leads []byte) string {
	h := sha256.New()
	h.Write(interns)
	h.Write([]byte{0})
	h.Write(leads)
	return hex.EncodeToString(h.Sum(nil))
}

// memoKey identifies a build of ds under a builder configuration.  The
// source names are part of the key because the build report quotes them.
func memoKey(ds *Dataset, b *hierarchy.Builder) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%q|%q|%s|%+v", ds.Digest, ds.Interns.Source, ds.Leads.Source, b.Policy(), b.Structure())
	return hex.EncodeToString(h.Sum(nil))
}

//Personal.AI order the ending
