package models

import "slices"

// TransferKind selects between moving money across the user's own accounts
// and paying another user.
type TransferKind string

const (
	TransferSelf     TransferKind = "self"
	TransferExternal TransferKind = "external"
)

func (k TransferKind) IsValid() bool {
	return k == TransferSelf || k == TransferExternal
}

// Recipient is a resolved counterparty. It is never mutated after resolution;
// callers receive copies of the candidate list.
type Recipient struct {
	displayName         string
	candidateAccountIDs []string
}

func NewRecipient(displayName string, candidateAccountIDs []string) *Recipient {
	return &Recipient{
		displayName:         displayName,
		candidateAccountIDs: slices.Clone(candidateAccountIDs),
	}
}

func (r *Recipient) DisplayName() string {
	return r.displayName
}

func (r *Recipient) CandidateAccountIDs() []string {
	return slices.Clone(r.candidateAccountIDs)
}

func (r *Recipient) HasCandidate(id string) bool {
	return slices.Contains(r.candidateAccountIDs, id)
}

// TransferDraft is the in-progress, not-yet-submitted user input for one transfer.
type TransferDraft struct {
	SourceAccountID      string
	DestinationAccountID string
	Amount               string
	Kind                 TransferKind
	RecipientEmail       string
	Recipient            *Recipient
}

// NewTransferDraft returns an empty self-transfer draft.
func NewTransferDraft() TransferDraft {
	return TransferDraft{Kind: TransferSelf}
}
