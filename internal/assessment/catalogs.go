package assessment

// Built-in catalogs. Each is returned as a fresh copy so callers cannot mutate shared tables.

const (
	AnxietyID           = "anxiety"
	ExecutiveFunctionID = "executive-function"
	SEMHID              = "semh"
)

// concernThresholds: score <= 2.0 is low, <= 3.5 moderate, above is high.
var concernThresholds = []Threshold{
	{Bound: 2.0, Band: BandLow},
	{Bound: 3.5, Band: BandModerate},
}

// strengthThresholds: score >= 4.0 is low concern, >= 2.5 moderate, below is high.
var strengthThresholds = []Threshold{
	{Bound: 4.0, Band: BandLow},
	{Bound: 2.5, Band: BandModerate},
}

// DefaultCatalogs returns the anxiety, executive-function and SEMH catalogs.
func DefaultCatalogs() []*Catalog {
	return []*Catalog{AnxietyCatalog(), ExecutiveFunctionCatalog(), SEMHCatalog()}
}

func AnxietyCatalog() *Catalog {
	return &Catalog{
		ID:       AnxietyID,
		Title:    "Anxiety Assessment",
		Subject:  "anxiety",
		Polarity: HigherIsConcern,
		Categories: []Category{
			{
				Name:  "physiological",
				Label: "physical symptoms of anxiety",
				Focus: "physical symptoms",
				Questions: []Question{
					{ID: "q1", Text: "How often do you notice your heart racing?"},
					{ID: "q2", Text: "How often do you sweat when you are not physically active?"},
					{ID: "q3", Text: "How often do you tremble or feel shaky?"},
					{ID: "q4", Text: "How often do you feel short of breath?"},
				},
				Recommendations: map[Band][]string{
					BandLow: {
						"Practice deep breathing exercises daily",
						"Consider light physical activity like walking or yoga",
					},
					BandModerate: {
						"Learn and practice progressive muscle relaxation techniques",
						"Establish a regular exercise routine",
						"Consider mindfulness meditation focused on body sensations",
					},
					BandHigh: {
						"Consult with a healthcare professional about physiological symptoms",
						"Implement structured relaxation techniques multiple times daily",
						"Consider referral to a specialist for further assessment",
						"Explore grounding techniques for immediate symptom management",
					},
				},
			},
			{
				Name:  "cognitive",
				Label: "anxious thoughts and worries",
				Focus: "worried thoughts",
				Questions: []Question{
					{ID: "q5", Text: "How often do you worry about future events?"},
					{ID: "q6", Text: "How often do you fear losing control?"},
					{ID: "q7", Text: "How often do you find it difficult to concentrate?"},
					{ID: "q8", Text: "How often do you expect the worst to happen?"},
				},
				Recommendations: map[Band][]string{
					BandLow: {
						"Practice positive self-talk",
						"Keep a thought journal to identify patterns",
					},
					BandModerate: {
						"Learn basic cognitive restructuring techniques",
						"Practice mindfulness meditation focused on thoughts",
						"Establish worry time to contain anxious thoughts",
					},
					BandHigh: {
						"Consider cognitive-behavioral therapy with a qualified professional",
						"Implement structured thought challenging exercises daily",
						"Develop a hierarchy of feared situations for gradual exposure",
						"Practice acceptance and commitment strategies",
					},
				},
			},
			{
				Name:  "behavioral",
				Label: "anxiety-related behaviors",
				Focus: "avoidance behaviors",
				Questions: []Question{
					{ID: "q9", Text: "How often do you avoid situations that make you anxious?"},
					{ID: "q10", Text: "How often do you seek reassurance from others?"},
					{ID: "q11", Text: "How often do you feel restless?"},
					{ID: "q12", Text: "How often is your sleep disturbed?"},
				},
				Recommendations: map[Band][]string{
					BandLow: {
						"Gradually face mildly anxiety-provoking situations",
						"Establish consistent sleep routines",
					},
					BandModerate: {
						"Create a step-by-step plan to address avoidance behaviors",
						"Implement regular relaxation activities before bed",
						"Practice assertiveness skills in anxiety-provoking situations",
					},
					BandHigh: {
						"Consider structured exposure therapy with professional guidance",
						"Implement a comprehensive sleep hygiene program",
						"Develop specific coping plans for high-anxiety situations",
						"Consider referral for specialized behavioral intervention",
					},
				},
			},
		},
		Thresholds: cloneThresholds(concernThresholds),
		Fallback:   BandHigh,
		Closings: Closings{
			AdultAge: 18,
			Youth:    "For children and adolescents, involving parents/carers and school staff in anxiety management is recommended.",
			Adult:    "Consider both self-help strategies and professional support if anxiety is impacting daily functioning.",
			Footer:   "The recommendations provided are tailored to your specific pattern of anxiety symptoms.",
		},
	}
}

func ExecutiveFunctionCatalog() *Catalog {
	return &Catalog{
		ID:       ExecutiveFunctionID,
		Title:    "Executive Function Assessment",
		Subject:  "executive function difficulty",
		Polarity: HigherIsConcern,
		Categories: []Category{
			strategyCategory("Working Memory", "difficulties with working memory", "holding information in mind",
				[]Question{
					{ID: "wm1", Text: "How often do you forget what you were doing in the middle of a task?"},
					{ID: "wm2", Text: "How difficult is it to remember multi-step instructions?"},
				},
				"Break tasks into smaller steps",
				"Use visual aids and written instructions",
				"Create checklists and use planners",
				"Practice memory games and activities",
			),
			strategyCategory("Cognitive Flexibility", "difficulties with cognitive flexibility", "adapting to change",
				[]Question{
					{ID: "cf1", Text: "How challenging is it to adapt when plans change unexpectedly?"},
					{ID: "cf2", Text: "How difficult is it to switch between different tasks or activities?"},
				},
				"Practice transitioning between activities",
				"Use visual schedules to prepare for changes",
				"Play games that require changing rules",
				"Teach problem-solving with multiple solutions",
			),
			strategyCategory("Inhibitory Control", "difficulties with inhibitory control", "managing impulses and distractions",
				[]Question{
					{ID: "ic1", Text: "How often do you act without thinking through consequences?"},
					{ID: "ic2", Text: "How easily are you distracted by unrelated stimuli?"},
				},
				"Create structured environments with minimal distractions",
				"Teach self-monitoring techniques",
				"Practice mindfulness and breathing exercises",
				"Use visual reminders for expected behaviors",
			),
			strategyCategory("Planning and Organization", "difficulties with planning and organization", "planning and organizing",
				[]Question{
					{ID: "po1", Text: "How difficult is it to organize materials and belongings?"},
					{ID: "po2", Text: "How challenging is it to plan steps needed to complete a project?"},
				},
				"Use visual organizers and planners",
				"Break long-term projects into manageable steps",
				"Create templates for recurring tasks",
				"Establish consistent routines and systems",
			),
			strategyCategory("Time Management", "difficulties with time management", "managing time",
				[]Question{
					{ID: "tm1", Text: "How often do you underestimate how long tasks will take?"},
					{ID: "tm2", Text: "How difficult is it to meet deadlines without last-minute rushes?"},
				},
				"Use timers and visual timers",
				"Create schedules with time estimates",
				"Break tasks into timed intervals",
				"Practice estimating how long tasks will take",
			),
			strategyCategory("Emotional Regulation", "difficulties with emotional regulation", "managing emotions",
				[]Question{
					{ID: "er1", Text: "How challenging is it to manage frustration when things don't go as planned?"},
					{ID: "er2", Text: "How often do emotions interfere with completing tasks or goals?"},
				},
				"Teach emotional vocabulary and recognition",
				"Create calm-down spaces and routines",
				"Practice mindfulness and relaxation techniques",
				"Use visual supports for emotional regulation",
			),
		},
		Thresholds: cloneThresholds(concernThresholds),
		Fallback:   BandHigh,
		Closings: Closings{
			AdultAge: 18,
			Youth:    "For children and adolescents, agreeing consistent supports with parents/carers and school staff is recommended.",
			Adult:    "Consider environmental supports and routines, and seek a professional assessment if difficulties persist.",
			Footer:   "The strategies provided are tailored to your specific executive function profile.",
		},
	}
}

func SEMHCatalog() *Catalog {
	return &Catalog{
		ID:       SEMHID,
		Title:    "Social, Emotional and Mental Health Assessment",
		Subject:  "social, emotional and mental health need",
		Polarity: HigherIsStrength,
		Categories: []Category{
			strategyCategory("Anxiety", "difficulties with anxiety", "worry and nervousness",
				[]Question{
					{ID: "anx1", Text: "How often do you feel worried or nervous?"},
					{ID: "anx2", Text: "How much do worries interfere with your daily activities?"},
				},
				"Practice deep breathing and relaxation techniques",
				"Use cognitive restructuring to challenge negative thoughts",
				"Create predictable routines and prepare for transitions",
				"Break tasks into smaller, manageable steps",
			),
			strategyCategory("Depression", "difficulties with low mood", "low mood",
				[]Question{
					{ID: "dep1", Text: "How often do you feel sad or down?"},
					{ID: "dep2", Text: "How much interest or pleasure do you have in doing things you usually enjoy?"},
				},
				"Encourage physical activity and time outdoors",
				"Set small, achievable goals to build confidence",
				"Maintain social connections and support networks",
				"Establish healthy sleep and eating routines",
			),
			strategyCategory("Anger Management", "difficulties managing anger", "managing anger",
				[]Question{
					{ID: "ang1", Text: "How often do you feel angry or frustrated?"},
					{ID: "ang2", Text: "How difficult is it to control your anger when upset?"},
				},
				"Identify triggers and early warning signs",
				"Teach calming strategies and time-out procedures",
				"Practice problem-solving and conflict resolution skills",
				"Use visual supports for emotional regulation",
			),
			strategyCategory("Self-Esteem", "difficulties with self-esteem", "self-esteem",
				[]Question{
					{ID: "est1", Text: "How positively do you feel about yourself most days?"},
					{ID: "est2", Text: "How confident do you feel in your abilities?"},
				},
				"Focus on strengths and achievements",
				"Set realistic goals and celebrate progress",
				"Provide specific, genuine praise",
				"Teach positive self-talk and affirmations",
			),
			strategyCategory("Social Skills", "difficulties with social skills", "social situations",
				[]Question{
					{ID: "soc1", Text: "How comfortable do you feel in social situations?"},
					{ID: "soc2", Text: "How easy is it for you to make and maintain friendships?"},
				},
				"Explicitly teach and model social skills",
				"Practice through role-play and social stories",
				"Provide structured opportunities for peer interaction",
				"Use visual supports and social scripts",
			),
			strategyCategory("Resilience", "difficulties with resilience", "bouncing back from setbacks",
				[]Question{
					{ID: "res1", Text: "How well do you bounce back from setbacks or challenges?"},
					{ID: "res2", Text: "How well do you adapt to change or unexpected situations?"},
				},
				"Develop problem-solving skills",
				"Build a growth mindset and positive outlook",
				"Strengthen supportive relationships",
				"Practice self-care and stress management",
			),
		},
		Thresholds: cloneThresholds(strengthThresholds),
		Fallback:   BandHigh,
		Closings: Closings{
			AdultAge: 18,
			Youth:    "For children and adolescents, sharing these results with parents/carers and a trusted member of school staff is recommended.",
			Adult:    "Consider talking to your GP or a mental health professional if these difficulties are affecting daily life.",
			Footer:   "The strategies provided are tailored to your specific pattern of strengths and needs.",
		},
	}
}

// strategyCategory builds a category whose recommendations are a growing
// prefix of one strategy list: two for low, three for moderate, four for high.
func strategyCategory(name, label, focus string, questions []Question, strategies ...string) Category {
	take := func(n int) []string {
		if n > len(strategies) {
			n = len(strategies)
		}
		out := make([]string, n)
		copy(out, strategies[:n])
		return out
	}
	return Category{
		Name:      name,
		Label:     label,
		Focus:     focus,
		Questions: questions,
		Recommendations: map[Band][]string{
			BandLow:      take(2),
			BandModerate: take(3),
			BandHigh:     take(4),
		},
	}
}

func cloneThresholds(in []Threshold) []Threshold {
	out := make([]Threshold, len(in))
	copy(out, in)
	return out
}
