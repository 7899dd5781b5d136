package scoring

// Tier is the discrete qualification bucket derived from the final score.
type Tier string

const (
	TierJunior Tier = "junior"
	TierMid    Tier = "mid"
	TierSenior Tier = "senior"
	TierLead   Tier = "lead"
)

// ApplicationBundle is one unsolicited applicant submission for a listing.
// Missing fields are tolerated; the scorer defaults them to worst case
// rather than failing, so a score is always produced.
type ApplicationBundle struct {
	ListingID      string
	Experience     string
	CoverLetter    string
	ResumeProvided bool
	ResumeFileName string
}

// QualificationScore is the scorer's verdict. Reasons lists one
// human-readable justification per contributing signal, in the order the
// signals were evaluated.
type QualificationScore struct {
	Score         int
	Tier          Tier
	SuggestedRate int
	Reasons       []string
}
