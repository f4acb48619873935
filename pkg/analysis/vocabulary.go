package analysis

// Closed symptom vocabulary. Frequencies never carry labels outside this set.
const (
	SymptomDepression   = "Depression"
	SymptomAnxiety      = "Anxiety"
	SymptomADHD         = "ADHD"
	SymptomHopelessness = "Hopelessness"
)

// Closed theme vocabulary
const (
	ThemeWork          = "Work & Career"
	ThemeRelationships = "Relationships"
	ThemeFamily        = "Family"
	ThemeHealth        = "Health"
	ThemeSchool        = "School"
	ThemeFinances      = "Finances"
	ThemeLoneliness    = "Loneliness"
	ThemeTrauma        = "Trauma"
	ThemeSelfWorth     = "Self-Worth"
	ThemeFuturePlans   = "Future Plans"
)

// SymptomLabels lists the closed symptom vocabulary in stable order
var SymptomLabels = []string{
	SymptomDepression,
	SymptomAnxiety,
	SymptomADHD,
	SymptomHopelessness,
}

// ThemeLabels lists the closed theme vocabulary in stable order
var ThemeLabels = []string{
	ThemeWork,
	ThemeRelationships,
	ThemeFamily,
	ThemeHealth,
	ThemeSchool,
	ThemeFinances,
	ThemeLoneliness,
	ThemeTrauma,
	ThemeSelfWorth,
	ThemeFuturePlans,
}

// DefaultSymptomTriggers maps each symptom label to its trigger phrases.
// Matching is case-insensitive whole-word; multi-word phrases match as
// contiguous word sequences.
var DefaultSymptomTriggers = map[string][]string{
	SymptomDepression: {
		// core emotional states
		"depressed", "depressing", "sad", "down", "unhappy",
		"low", "numb", "empty", "worthless",
		// physical and behavioral symptoms
		"tired", "fatigued", "exhausted", "drained", "sluggish",
		"no energy", "no motivation", "can't get out of bed",
		// social withdrawal
		"alone", "lonely", "no one cares", "left out",
		"ignored", "abandoned", "unloved", "invisible",
		// emotional behavior
		"cry", "crying", "tears", "tearful", "broke down", "shut down",
		// self-deprecating language
		"not okay", "not fine", "just tired", "overwhelmed",
		"checked out", "burned out",
	},
	SymptomAnxiety: {
		"anxious", "anxiety", "nervous", "worried", "panic",
		"afraid", "scared", "tense", "stressed", "overwhelmed",
		"worry", "jitters", "heart racing", "butterflies", "jumpy",
		"restless", "on edge", "dizzy", "freaking out",
		"spiraling", "can't stop thinking", "mind racing",
		"dreading it", "bad feeling", "always on alert", "paranoid", "unsafe",
	},
	SymptomADHD: {
		"distracted", "focus", "impulsive", "fidget",
		"bored", "forgetful", "forget", "procrastinate", "procrastinating",
		"restless", "attention", "zoned out", "daydream", "drifted",
		"can't start", "can't finish", "keep forgetting", "disorganized",
		"missed it", "ran out of time", "late again",
		"brain fog", "all over the place", "spaced out", "scatterbrained",
	},
	SymptomHopelessness: {
		"hopeless", "helpless", "stuck", "trapped",
		"giving up", "gave up", "give up", "powerless",
		"despair", "desperate", "nothing left",
		"guilty", "worthless", "useless", "what's the point",
		"hate myself", "hate my life", "can't focus", "can't think", "foggy",
		"not enough", "broken", "failed", "failure", "nothing matters",
		"can't take it anymore", "breaking point", "last straw", "rock bottom",
		"no way out", "no way forward",
		"pointless", "why bother", "nothing helps", "nothing changes",
	},
}

// DefaultThemeTriggers maps each theme label to its trigger phrases
var DefaultThemeTriggers = map[string][]string{
	ThemeWork: {
		"job", "career", "boss", "promotion", "unemployed", "work", "office",
		"colleague", "coworker", "resume", "interview", "quit", "laid off",
		"fired", "internship", "commute", "overtime", "paycheck", "freelance",
		"salary", "deadline", "burnout", "job hunt",
	},
	ThemeRelationships: {
		"boyfriend", "girlfriend", "marriage", "breakup", "cheating", "dating",
		"partner", "relationship", "divorce", "crush", "love life", "toxic",
		"arguing", "fight", "romantic", "ex", "trust issues", "jealousy",
	},
	ThemeFamily: {
		"mom", "dad", "parents", "siblings", "childhood", "home", "family",
		"stepmom", "stepdad", "cousins", "grandma", "grandpa", "uncle", "aunt",
		"household", "upbringing", "parenting",
	},
	ThemeHealth: {
		"hospital", "sick", "pain", "diagnosis", "medication", "illness",
		"disease", "injury", "doctor", "therapy", "surgery", "treatment",
		"health", "symptoms", "prescription", "infection", "recovery",
		"mental health", "chronic pain", "side effects",
	},
	ThemeSchool: {
		"school", "college", "grades", "exam", "professor", "class",
		"university", "test", "homework", "assignment", "major", "semester",
		"credits", "study", "gpa", "presentation", "campus", "graduation",
		"midterms", "thesis", "drop out", "tuition", "library",
	},
	ThemeFinances: {
		"money", "debt", "bills", "rent", "broke", "budget", "savings",
		"expenses", "paycheck", "afford", "financial aid", "loan",
		"scholarship", "overdraft", "poor", "bankrupt", "income",
		"credit card", "late fees", "utilities",
	},
	ThemeLoneliness: {
		"alone", "isolated", "lonely", "left out", "disconnected", "ignored",
		"invisible", "abandoned", "solitude", "alienated", "excluded",
		"neglected", "friendless", "withdrawn",
	},
	ThemeTrauma: {
		"violence", "abuse", "trauma", "scared", "ptsd", "flashback",
		"assault", "harassment", "violated", "shaken", "nightmare",
		"survivor", "triggered", "panic attack", "screaming", "fearful",
		"escape",
	},
	ThemeSelfWorth: {
		"worthless", "failure", "ashamed", "not enough", "insecure",
		"unlovable", "unworthy", "embarrassed", "inadequate", "inferior",
		"regret", "self-esteem", "hate myself", "nobody cares", "useless",
		"broken", "not good enough", "burden",
	},
	ThemeFuturePlans: {
		"future", "plan", "goals", "dreams", "next step", "path",
		"direction", "hope", "ambition", "vision", "motivation",
		"new chapter", "aspiration", "long term", "planning ahead",
		"roadmap",
	},
}

// DefaultFillerTriggers are filler words and discourse markers counted
// per segment. Fillers are reported only, they never enter the symptom or
// theme frequencies.
var DefaultFillerTriggers = []string{
	"um", "uh", "umm", "er", "ah", "eh", "hmm",
	"like", "you know", "i mean", "basically", "literally", "anyway",
	"sort of", "kind of", "i guess", "i suppose", "i don't know", "i dunno",
	"honestly", "to be honest", "whatever", "or something", "anyways",
}

// symptomLabelSet and themeLabelSet support vocabulary-closure checks
var (
	symptomLabelSet = make(map[string]struct{}, len(SymptomLabels))
	themeLabelSet   = make(map[string]struct{}, len(ThemeLabels))
)

func init() {
	for _, label := range SymptomLabels {
		symptomLabelSet[label] = struct{}{}
	}
	for _, label := range ThemeLabels {
		themeLabelSet[label] = struct{}{}
	}
}

// IsSymptomLabel reports whether the label belongs to the closed symptom vocabulary
func IsSymptomLabel(label string) bool {
	_, ok := symptomLabelSet[label]
	return ok
}

// IsThemeLabel reports whether the label belongs to the closed theme vocabulary
func IsThemeLabel(label string) bool {
	_, ok := themeLabelSet[label]
	return ok
}
