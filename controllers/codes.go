package controllers

import (
	"sync"
	"time"
)

const codeTTL = 15 * time.Minute

// timeNow is swapped out in tests to exercise code expiry.
var timeNow = time.Now

// pendingCode is a verification or reset code waiting to be redeemed.
// Signup stores the whole pending account here, so no user row exists
// until the email is verified.
type pendingCode struct {
	Code         string
	Name         string
	PasswordHash string
	Role         string
	ExpiresAt    time.Time
}

// codeStore is a mutex-guarded in-memory code table keyed by email.
// Codes are short-lived, so losing them on restart is acceptable.
type codeStore struct {
	mu      sync.Mutex
	entries map[string]pendingCode
}

func newCodeStore() *codeStore {
	return &codeStore{entries: make(map[string]pendingCode)}
}

func (cs *codeStore) Put(email string, entry pendingCode) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	entry.ExpiresAt = timeNow().Add(codeTTL)
	cs.entries[email] = entry
}

func (cs *codeStore) Get(email string) (pendingCode, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	entry, ok := cs.entries[email]
	return entry, ok
}

func (cs *codeStore) Delete(email string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.entries, email)
}

var (
	verificationCodes  = newCodeStore()
	passwordResetCodes = newCodeStore()
)
