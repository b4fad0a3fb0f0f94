package scoring

import "atsmatch/internal/types"

// Tier thresholds on the normalized 0-100 category score
const (
	lowPriorityThreshold    = 75
	mediumPriorityThreshold = 50
)

// messages holds the strong, fair and weak message of each category
var messages = map[string][3]string{
	CategoryKeywordMatch: {
		"Your resume contains a strong set of relevant skills and professional keywords.",
		"Your resume has a fair number of keywords. Add more specific technical and soft skills.",
		"Your resume lacks keywords. List your skills explicitly and use common professional terms.",
	},
	CategoryKeywordPlacement: {
		"Your skills are well supported by your summary and experience.",
		"Some skills only appear in the skills list. Mention them in your experience and summary too.",
		"Your skills are not backed by your experience. Show where you applied each skill.",
	},
	CategoryFormatting: {
		"Your resume follows a clean, ATS-friendly structure.",
		"Your resume structure is mostly fine. Check contact details and keep date formats consistent.",
		"Your resume is missing standard sections or contact details. Use the usual section layout and one date format.",
	},
	CategoryExperience: {
		"Your experience is detailed and relevant.",
		"Some positions need more detail or a clearer link to the target role.",
		"Describe your experience with concrete achievements that relate to the target role.",
	},
	CategoryEducation: {
		"Your education and certifications are complete.",
		"Complete your education entries and consider adding certifications.",
		"Add your education with institution, degree, field of study and dates, plus any certifications.",
	},
}

// PriorityFor maps a normalized category score to a priority
func PriorityFor(score int) types.Priority {
	switch {
	case score >= lowPriorityThreshold:
		return types.PriorityLow
	case score >= mediumPriorityThreshold:
		return types.PriorityMedium
	default:
		return types.PriorityHigh
	}
}

func feedbackFor(category string, score int) types.FeedbackItem {
	tier := 2
	switch PriorityFor(score) {
	case types.PriorityLow:
		tier = 0
	case types.PriorityMedium:
		tier = 1
	}
	return types.FeedbackItem{
		Category: category,
		Score:    clamp(score, 0, 100),
		Feedback: messages[category][tier],
		Priority: PriorityFor(score),
	}
}
