package analysis

import "literacylead/internal/models"

// Each group gets three fixed 15-minute lessons targeting its skill focus.
// The external analyzer writes these freely; the deterministic engine ships
// a vetted set so output stays stable run to run.

var groupLessons = map[string][]models.LessonPlan{
	models.GroupFoundational: {
		{
			Title:          "Phoneme Segmentation with Elkonin Boxes",
			WarmUp:         "Stretch and tap three-sound words (map, sit, fun) on fingers.",
			ExplicitModel:  "Model pushing a chip into a box for each sound in 'ship'.",
			GuidedPractice: "Students segment 8 CVC words into boxes while saying each phoneme.",
			CheckUnd:       "Dictate 'lash'; students tap and count the sounds independently.",
		},
		{
			Title:          "First Sound Fluency Sprint",
			WarmUp:         "Rapid-fire first-sound isolation from picture cards.",
			ExplicitModel:  "Model isolating and holding the initial sound of 'sun' and 'shark'.",
			GuidedPractice: "Partner rounds: one names the picture, the other gives the first sound.",
			CheckUnd:       "Exit check of five pictures; students write the first letter heard.",
		},
		{
			Title:          "Blending Sounds into Words",
			WarmUp:         "Oral blending of stretched words the teacher says slowly.",
			ExplicitModel:  "Model continuous blending of 'mmmaaap' into 'map'.",
			GuidedPractice: "Students blend teacher-segmented words and show thumbs when they hear it.",
			CheckUnd:       "Students blend three new words without teacher stretch support.",
		},
	},
	models.GroupDecoding: {
		{
			Title:          "CVC Word Building with Letter Tiles",
			WarmUp:         "Quick review of letter-sound cards including digraphs.",
			ExplicitModel:  "Build 'sat', change one tile at a time: sat -> sit -> sip.",
			GuidedPractice: "Word chains with tiles; students read each new word aloud.",
			CheckUnd:       "Students build and read two transfer words unaided.",
		},
		{
			Title:          "Nonsense Word Decoding Drill",
			WarmUp:         "Sound-by-sound warm-up with vowel cards.",
			ExplicitModel:  "Model decoding 'vop' sound-by-sound, then whole-word read.",
			GuidedPractice: "Timed partner reads of a nonsense word grid, tracking whole-word reads.",
			CheckUnd:       "Six-item nonsense word probe read independently.",
		},
		{
			Title:          "Digraph and Blend Focus",
			WarmUp:         "Sort picture cards by initial digraph (sh, ch, th).",
			ExplicitModel:  "Model reading blend words, underlining the unit before reading.",
			GuidedPractice: "Students underline units then read a 10-word list chorally.",
			CheckUnd:       "Students read four new digraph words and use one in a sentence.",
		},
	},
	models.GroupFluency: {
		{
			Title:          "Repeated Reading with Rate Tracking",
			WarmUp:         "Echo-read the first two sentences of the passage.",
			ExplicitModel:  "Model phrase-cued reading of one paragraph with expression.",
			GuidedPractice: "Three timed one-minute reads; students graph words correct.",
			CheckUnd:       "Cold read of the final paragraph; compare rate to the first read.",
		},
		{
			Title:          "Accuracy First: Careful Reading",
			WarmUp:         "Preview and decode the passage's five trickiest words.",
			ExplicitModel:  "Model self-correcting a miscue and rereading the sentence.",
			GuidedPractice: "Partner reading with a miscue tally; readers fix errors before moving on.",
			CheckUnd:       "Students read one page with 97%+ accuracy before a rate attempt.",
		},
		{
			Title:          "Sight Word Automaticity",
			WarmUp:         "Flash review of the current high-frequency word deck.",
			ExplicitModel:  "Model instant recognition versus sounding out for 'said' and 'were'.",
			GuidedPractice: "Beat-the-clock rounds reading word cards in phrases.",
			CheckUnd:       "Students read a phrase strip cold with no hesitations.",
		},
	},
	models.GroupAdvanced: {
		{
			Title:          "Inference and Evidence Hunt",
			WarmUp:         "Picture inference: what happened just before this scene?",
			ExplicitModel:  "Model answering an inference question and pointing to text evidence.",
			GuidedPractice: "Students answer two inference questions and underline their evidence.",
			CheckUnd:       "Students write one inference with cited evidence independently.",
		},
		{
			Title:          "Vocabulary in Context",
			WarmUp:         "Rate familiarity with three target words from the text.",
			ExplicitModel:  "Model using context clues to define a target word.",
			GuidedPractice: "Students find and define the remaining targets with a partner.",
			CheckUnd:       "Students use two target words in original sentences.",
		},
		{
			Title:          "Retell with Story Structure",
			WarmUp:         "Review story-structure hand signals (character, setting, problem, solution).",
			ExplicitModel:  "Model a complete retell using the structure frame.",
			GuidedPractice: "Partner retells scored with a four-point structure checklist.",
			CheckUnd:       "One-minute independent retell hitting all four elements.",
		},
	},
}

var groupActions = map[string]string{
	models.GroupFoundational: "Daily 15-minute phonemic awareness block; progress monitor PSF weekly.",
	models.GroupDecoding:     "Pre-teach letter-sound patterns before whole-class reading; monitor NWF biweekly.",
	models.GroupFluency:      "Schedule repeated-reading pairs three times a week; monitor ORF with accuracy checks.",
	models.GroupAdvanced:     "Extend with above-level text sets and vocabulary study; spot-check comprehension monthly.",
}

func lessonsFor(group string) []models.LessonPlan {
	return groupLessons[group]
}

func teacherActionFor(group string) string {
	return groupActions[group]
}
