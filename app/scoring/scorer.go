package scoring

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const minCoverLetterLen = 100

var (
	yearsRangeRe = regexp.MustCompile(`(\d+)\s*[-–]\s*(\d+)\s*years?`)
	yearsCountRe = regexp.MustCompile(`(\d+)\s*\+?\s*years?`)
)

var resumeExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
}

// Scorer rates a free-text application bundle into a 0-100 score, a tier,
// and a suggested hourly rate. Deterministic, pure, no I/O.
type Scorer struct {
	coreSkills     []string
	advancedSkills []string
}

func NewScorer() *Scorer {
	return &Scorer{
		coreSkills: []string{
			"react", "vue", "angular", "svelte", "javascript", "typescript",
			"html", "css", "redux", "frontend",
		},
		advancedSkills: []string{
			"node", "docker", "kubernetes", "aws", "graphql", "terraform",
			"ci/cd", "microservices", "postgres", "devops",
		},
	}
}

// Score accumulates independently weighted signals, clamps the total to
// [0, 100], and re-derives tier and rate from the clamped total, so the
// final tier reflects the whole submission rather than experience alone.
func (s *Scorer) Score(bundle ApplicationBundle) QualificationScore {
	var reasons []string
	score := 0

	years := s.extractYears(bundle.Experience)
	experiencePoints, experienceTier := experienceSignal(years)
	score += experiencePoints
	reasons = append(reasons, fmt.Sprintf("%d year(s) of experience reads as %s (+%d)",
		years, experienceTier, experiencePoints))

	text := strings.ToLower(bundle.Experience + " " + bundle.CoverLetter)

	coreHits := countHits(text, s.coreSkills)
	corePoints := thresholdPoints(coreHits, 3, 25, 1, 15)
	score += corePoints
	reasons = append(reasons, fmt.Sprintf("%d core skill(s) mentioned (+%d)", coreHits, corePoints))

	advancedHits := countHits(text, s.advancedSkills)
	advancedPoints := thresholdPoints(advancedHits, 2, 20, 1, 10)
	score += advancedPoints
	reasons = append(reasons, fmt.Sprintf("%d advanced/infrastructure skill(s) mentioned (+%d)", advancedHits, advancedPoints))

	letterLen := len(strings.TrimSpace(bundle.CoverLetter))
	if letterLen >= minCoverLetterLen {
		score += 15
		reasons = append(reasons, fmt.Sprintf("substantial cover letter, %d characters (+15)", letterLen))
	} else {
		reasons = append(reasons, fmt.Sprintf("cover letter below %d characters (+0)", minCoverLetterLen))
	}

	if bundle.ResumeProvided && validResumeFile(bundle.ResumeFileName) {
		score += 10
		reasons = append(reasons, "resume attached (+10)")
	} else if bundle.ResumeProvided {
		reasons = append(reasons, "resume attached but file type not accepted (+0)")
	} else {
		reasons = append(reasons, "no resume attached (+0)")
	}

	score = clamp(score, 0, 100)
	tier, rate := tierForScore(score)
	reasons = append(reasons, fmt.Sprintf("total %d: %s tier, suggested rate $%d/h", score, tier, rate))

	return QualificationScore{
		Score:         score,
		Tier:          tier,
		SuggestedRate: rate,
		Reasons:       reasons,
	}
}

// extractYears parses years of experience from free text using ordered
// patterns: an explicit range, an explicit count, then seniority keywords,
// defaulting to 1 when nothing matches.
func (s *Scorer) extractYears(text string) int {
	lower := strings.ToLower(text)

	if m := yearsRangeRe.FindStringSubmatch(lower); m != nil {
		low, _ := strconv.Atoi(m[1])
		high, _ := strconv.Atoi(m[2])
		return (low + high) / 2
	}

	if m := yearsCountRe.FindStringSubmatch(lower); m != nil {
		years, _ := strconv.Atoi(m[1])
		return years
	}

	switch {
	case strings.Contains(lower, "senior") || strings.Contains(lower, "lead"):
		return 5
	case strings.Contains(lower, "mid") || strings.Contains(lower, "intermediate"):
		return 3
	case strings.Contains(lower, "junior") || strings.Contains(lower, "entry"):
		return 1
	}

	return 1
}

func experienceSignal(years int) (int, Tier) {
	switch {
	case years >= 5:
		return 30, TierSenior
	case years >= 3:
		return 20, TierMid
	default:
		return 10, TierJunior
	}
}

func tierForScore(score int) (Tier, int) {
	switch {
	case score >= 80:
		return TierLead, 100
	case score >= 60:
		return TierSenior, 75
	case score >= 40:
		return TierMid, 50
	default:
		return TierJunior, 30
	}
}

func countHits(text string, keywords []string) int {
	hits := 0
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			hits++
		}
	}
	return hits
}

func thresholdPoints(hits, highThreshold, highPoints, lowThreshold, lowPoints int) int {
	switch {
	case hits >= highThreshold:
		return highPoints
	case hits >= lowThreshold:
		return lowPoints
	default:
		return 0
	}
}

func validResumeFile(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return true
	}
	return resumeExtensions[strings.ToLower(filepath.Ext(name))]
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
