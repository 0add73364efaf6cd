package scoring

import (
	"github.com/scoutline/scout-cli/internal/model"
)

// CTAType is a call-to-action category presented to a prospect.
type CTAType string

const (
	CTAEducationalContent CTAType = "educational_content"
	CTAFollowUpCheckin    CTAType = "follow_up_checkin"
	CTASoftInvite         CTAType = "soft_invite"
	CTABookingCall        CTAType = "booking_call"
	CTAStarterKitOffer    CTAType = "starter_kit_offer"
)

// ctaRank orders CTAs from least to most aggressive.
var ctaRank = map[CTAType]int{
	CTAEducationalContent: 0,
	CTAFollowUpCheckin:    1,
	CTASoftInvite:         2,
	CTABookingCall:        3,
	CTAStarterKitOffer:    4,
}

// maxRankFor is the most aggressive CTA each lead temperature tolerates.
var maxRankFor = map[model.Bucket]int{
	model.BucketCold: 1,
	model.BucketWarm: 2,
	model.BucketHot:  4,
}

// CTAResult is the CTA-fit overlay's output.
type CTAResult struct {
	FitScore     float64 `json:"fit_score"`
	SuggestedCTA CTAType `json:"suggested_cta"`
	Misaligned   bool    `json:"misaligned"`
}

// SuggestedCTAFor maps a lead temperature to the CTA the overlay proposes
// next: educate cold leads, invite warm ones, push hot ones toward a call.
func SuggestedCTAFor(temp model.Bucket) CTAType {
	switch temp {
	case model.BucketHot:
		return CTABookingCall
	case model.BucketWarm:
		return CTASoftInvite
	default:
		return CTAEducationalContent
	}
}

// CTAOverlay scores whether the last CTA presented to the prospect was
// appropriate for its current lead temperature and proposes the next one.
// An aggressive CTA sent to a cold lead is flagged as misaligned.
func CTAOverlay(lastCTA CTAType, temp model.Bucket) CTAResult {
	suggested := SuggestedCTAFor(temp)

	if lastCTA == "" {
		// Nothing presented yet; neutral fit, just propose.
		return CTAResult{FitScore: 60, SuggestedCTA: suggested}
	}

	rank, known := ctaRank[lastCTA]
	if !known {
		return CTAResult{FitScore: 40, SuggestedCTA: suggested, Misaligned: true}
	}

	maxRank := maxRankFor[temp]
	if rank > maxRank {
		over := float64(rank - maxRank)
		return CTAResult{
			FitScore:     clamp(100-30*over, 0, 100),
			SuggestedCTA: suggested,
			Misaligned:   true,
		}
	}

	// Within tolerance: full marks at or one step below the ceiling,
	// softer CTAs lose a little urgency credit.
	if maxRank-rank <= 1 {
		return CTAResult{FitScore: 100, SuggestedCTA: suggested}
	}
	return CTAResult{FitScore: 75, SuggestedCTA: suggested}
}
