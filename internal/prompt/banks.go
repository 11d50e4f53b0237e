package prompt

import "strings"

// BankQuestion is one canned question used as a prompt style reference
// and as filler for the offline template. {chapter} in the text is
// replaced with the requested chapter at use.
type BankQuestion struct {
	Kind    QuestionKind
	Text    string
	Options []string
	Answer  string
}

// contentBanks holds canned questions per normalized subject. The
// "general" bank backs every subject with no bank of its own.
var contentBanks = map[string][]BankQuestion{
	"mathematics": {
		{Kind: KindMCQ, Text: "The value of $\\sqrt{144}$ is:", Options: []string{"10", "11", "12", "14"}, Answer: "(c) 12"},
		{Kind: KindMCQ, Text: "If $x^2 - 5x + 6 = 0$, the roots are:", Options: []string{"2 and 3", "1 and 6", "-2 and -3", "5 and 6"}, Answer: "(a) 2 and 3"},
		{Kind: KindFillBlank, Text: "A polynomial of degree two is called a ________ polynomial.", Answer: "quadratic"},
		{Kind: KindFillBlank, Text: "The sum of the angles of a triangle is ________ degrees.", Answer: "180"},
		{Kind: KindMatch, Text: "Match the expression with its value.", Options: []string{"| $2^3$ | (a) 9 |", "| $3^2$ | (b) 8 |", "| $\\sqrt{81}$ | (c) 16 |", "| $4^2$ | (d) 9 |"}, Answer: "1-(b), 2-(a), 3-(d), 4-(c)"},
		{Kind: KindVeryShort, Text: "State the Pythagoras theorem.", Answer: "In a right triangle the square of the hypotenuse equals the sum of squares of the other two sides."},
		{Kind: KindShort, Text: "Find the zeroes of the polynomial $p(x) = x^2 - 9$ and verify the relationship between the zeroes and the coefficients.", Answer: "Zeroes are 3 and -3; sum 0 = -b/a, product -9 = c/a."},
		{Kind: KindLong, Text: "Solve the pair of equations $2x + 3y = 11$ and $x - y = 3$ graphically and verify the answer algebraically.", Answer: "x = 4, y = 1; both lines intersect at (4, 1)."},
		{Kind: KindEssay, Text: "Prove that the lengths of tangents drawn from an external point to a circle are equal. [DIAGRAM: circle with two tangents from external point P]", Answer: "Standard proof via congruent right triangles OAP and OBP."},
		{Kind: KindNumerical, Text: "The 10th term of the AP $3, 7, 11, \\ldots$ is:", Answer: "39"},
	},
	"physics": {
		{Kind: KindMCQ, Text: "The SI unit of force is:", Options: []string{"joule", "newton", "watt", "pascal"}, Answer: "(b) newton"},
		{Kind: KindMCQ, Text: "The focal length of a plane mirror is:", Options: []string{"zero", "infinity", "equal to object distance", "twice the object distance"}, Answer: "(b) infinity"},
		{Kind: KindFillBlank, Text: "The rate of change of displacement is called ________.", Answer: "velocity"},
		{Kind: KindMatch, Text: "Match the quantity with its SI unit.", Options: []string{"| Power | (a) ohm |", "| Resistance | (b) watt |", "| Current | (c) hertz |", "| Frequency | (d) ampere |"}, Answer: "1-(b), 2-(a), 3-(d), 4-(c)"},
		{Kind: KindVeryShort, Text: "State Ohm's law.", Answer: "Current through a conductor is proportional to the potential difference across it at constant temperature, $V = IR$."},
		{Kind: KindShort, Text: "A body accelerates uniformly from rest to $20 \\, m/s$ in 5 s. Calculate the acceleration and the distance covered.", Answer: "$a = 4 \\, m/s^2$, $s = 50 \\, m$."},
		{Kind: KindLong, Text: "Describe an experiment to verify Ohm's law. Draw the circuit used. [DIAGRAM: circuit with battery, ammeter, voltmeter and resistor]", Answer: "Series ammeter with resistor, voltmeter in parallel; V/I constant."},
		{Kind: KindEssay, Text: "Explain the image formation by a convex lens for an object beyond $2F$, at $2F$, and between $F$ and $2F$, with ray diagrams. [DIAGRAM: convex lens ray diagram with object beyond 2F]", Answer: "Real inverted images; sizes per lens formula $\\frac{1}{f} = \\frac{1}{v} - \\frac{1}{u}$."},
		{Kind: KindNumerical, Text: "A current of $0.5 \\, A$ flows through a $220 \\, \\ohm$ resistor. The potential difference is:", Answer: "$110 \\, V$"},
	},
	"chemistry": {
		{Kind: KindMCQ, Text: "The chemical formula of washing soda is:", Options: []string{"$NaHCO_3$", "$Na_2CO_3$", "$NaOH$", "$NaCl$"}, Answer: "(b) $Na_2CO_3$"},
		{Kind: KindFillBlank, Text: "The pH of a neutral solution at $25\\degree C$ is ________.", Answer: "7"},
		{Kind: KindMatch, Text: "Match the substance with its nature.", Options: []string{"| Lemon juice | (a) base |", "| Soap | (b) acid |", "| Salt solution | (c) neutral |"}, Answer: "1-(b), 2-(a), 3-(c)"},
		{Kind: KindVeryShort, Text: "Write the balanced equation for the combustion of methane.", Answer: "$CH_4 + 2O_2 \\rightarrow CO_2 + 2H_2O$"},
		{Kind: KindShort, Text: "Distinguish between exothermic and endothermic reactions with one example each.", Answer: "Exothermic releases heat (combustion); endothermic absorbs heat (photosynthesis)."},
		{Kind: KindLong, Text: "Explain the electrolytic refining of copper with a labelled diagram. [DIAGRAM: electrolytic cell with copper electrodes]", Answer: "Impure anode dissolves, pure copper deposits on cathode, impurities form anode mud."},
		{Kind: KindEssay, Text: "Describe the modern periodic law and discuss the trends of valency, atomic size and metallic character across a period and down a group.", Answer: "Properties periodic in atomic number; size falls across, rises down; metallic character likewise."},
	},
	"biology": {
		{Kind: KindMCQ, Text: "The powerhouse of the cell is the:", Options: []string{"nucleus", "ribosome", "mitochondrion", "vacuole"}, Answer: "(c) mitochondrion"},
		{Kind: KindFillBlank, Text: "The pigment that captures light energy for photosynthesis is ________.", Answer: "chlorophyll"},
		{Kind: KindMatch, Text: "Match the organ with its function.", Options: []string{"| Nephron | (a) gas exchange |", "| Alveolus | (b) filtration |", "| Neuron | (c) impulse conduction |"}, Answer: "1-(b), 2-(a), 3-(c)"},
		{Kind: KindVeryShort, Text: "Define transpiration.", Answer: "Loss of water vapour from the aerial parts of a plant."},
		{Kind: KindShort, Text: "List the differences between aerobic and anaerobic respiration.", Answer: "Oxygen use, end products ($CO_2$/water vs lactic acid or ethanol), energy yield."},
		{Kind: KindLong, Text: "Describe the structure of a neuron with a labelled diagram and explain how a nerve impulse travels. [DIAGRAM: neuron with dendrites, cell body and axon]", Answer: "Dendrite to cell body to axon to synapse; electrical then chemical transmission."},
		{Kind: KindEssay, Text: "Explain the process of double circulation in the human heart with a labelled diagram. [DIAGRAM: human heart with four chambers labelled]", Answer: "Pulmonary and systemic loops; blood passes the heart twice per cycle."},
	},
	"science": {
		{Kind: KindMCQ, Text: "Which of the following is a chemical change?", Options: []string{"melting of ice", "rusting of iron", "dissolving sugar", "breaking glass"}, Answer: "(b) rusting of iron"},
		{Kind: KindFillBlank, Text: "The process by which plants make food is called ________.", Answer: "photosynthesis"},
		{Kind: KindMatch, Text: "Match the device with the energy conversion.", Options: []string{"| Solar cell | (a) electrical to sound |", "| Loudspeaker | (b) light to electrical |", "| Motor | (c) electrical to mechanical |"}, Answer: "1-(b), 2-(a), 3-(c)"},
		{Kind: KindVeryShort, Text: "Name the three states of matter with one example each.", Answer: "Solid (ice), liquid (water), gas (steam)."},
		{Kind: KindShort, Text: "Why does a metal spoon feel colder than a wooden spoon in the same room?", Answer: "Metal conducts heat away from the hand faster."},
		{Kind: KindLong, Text: "Explain the water cycle with a labelled diagram. [DIAGRAM: water cycle showing evaporation, condensation and rainfall]", Answer: "Evaporation, condensation, precipitation, collection."},
		{Kind: KindEssay, Text: "Discuss renewable and non-renewable sources of energy with examples, and argue which mix suits your region.", Answer: "Solar, wind, hydro vs coal, petroleum; open-ended justification."},
	},
	"english": {
		{Kind: KindMCQ, Text: "Choose the correct synonym of 'abundant':", Options: []string{"scarce", "plentiful", "meagre", "rare"}, Answer: "(b) plentiful"},
		{Kind: KindFillBlank, Text: "She ________ (go) to school every day. (Use the correct form of the verb.)", Answer: "goes"},
		{Kind: KindMatch, Text: "Match the figure of speech with its example.", Options: []string{"| Simile | (a) The wind whispered |", "| Personification | (b) Brave as a lion |", "| Alliteration | (c) She sells sea shells |"}, Answer: "1-(b), 2-(a), 3-(c)"},
		{Kind: KindVeryShort, Text: "What is the central idea of the chapter {chapter}?", Answer: "Per text; accept any reasonable summary."},
		{Kind: KindShort, Text: "Change the narration: He said, \"I am reading a novel.\"", Answer: "He said that he was reading a novel."},
		{Kind: KindLong, Text: "Write a letter to your municipal officer about the poor condition of roads in your locality.", Answer: "Formal letter format: address, date, salutation, body, closing."},
		{Kind: KindEssay, Text: "Write an essay of about 250 words on the importance of reading.", Answer: "Assess per rubric: content, organisation, language."},
	},
	"social studies": {
		{Kind: KindMCQ, Text: "The French Revolution began in the year:", Options: []string{"1776", "1789", "1804", "1815"}, Answer: "(b) 1789"},
		{Kind: KindFillBlank, Text: "The line of latitude at $0\\degree$ is called the ________.", Answer: "Equator"},
		{Kind: KindMatch, Text: "Match the term with its field.", Options: []string{"| Monsoon | (a) Economics |", "| Inflation | (b) Geography |", "| Preamble | (c) Civics |"}, Answer: "1-(b), 2-(a), 3-(c)"},
		{Kind: KindVeryShort, Text: "What is a constitution?", Answer: "The set of fundamental principles by which a state is governed."},
		{Kind: KindShort, Text: "State any three features of the Indian federal system.", Answer: "Division of powers, written constitution, independent judiciary."},
		{Kind: KindLong, Text: "Describe the major factors that influence the climate of a region.", Answer: "Latitude, altitude, distance from sea, relief, winds and currents."},
		{Kind: KindEssay, Text: "Discuss the causes and consequences of the event studied in {chapter}.", Answer: "Assess per rubric: causes, course, consequences."},
	},
	"general": {
		{Kind: KindMCQ, Text: "Which option best completes the idea introduced in {chapter}?", Options: []string{"Option one", "Option two", "Option three", "Option four"}, Answer: "Per key prepared by the examiner."},
		{Kind: KindFillBlank, Text: "The key term introduced in {chapter} is ________.", Answer: "Per text."},
		{Kind: KindMatch, Text: "Match the terms from {chapter} with their descriptions.", Options: []string{"| Term 1 | (a) Description of term 2 |", "| Term 2 | (b) Description of term 1 |"}, Answer: "1-(b), 2-(a)"},
		{Kind: KindVeryShort, Text: "Define the most important term introduced in {chapter}.", Answer: "Per text."},
		{Kind: KindShort, Text: "Summarise the main idea of {chapter} in three or four sentences.", Answer: "Per text."},
		{Kind: KindLong, Text: "Explain the central concept of {chapter} with suitable examples.", Answer: "Per text."},
		{Kind: KindEssay, Text: "Write a detailed essay on the themes covered in {chapter}.", Answer: "Assess per rubric."},
		{Kind: KindNumerical, Text: "Solve the practice problem from {chapter} shown in class.", Answer: "Per worked solution."},
	},
}

// subjectKey normalizes a free-text subject down to a bank key. Order
// matters: "Physical Science" and "Social Science" must not match the
// physics bank, so the broad "scien" check runs after the specific ones.
func subjectKey(subject string) string {
	s := strings.ToLower(strings.TrimSpace(subject))
	switch {
	case strings.Contains(s, "math"):
		return "mathematics"
	case strings.Contains(s, "physics"):
		return "physics"
	case strings.Contains(s, "chem"):
		return "chemistry"
	case strings.Contains(s, "bio"):
		return "biology"
	case strings.Contains(s, "social"), strings.Contains(s, "history"), strings.Contains(s, "geograph"), strings.Contains(s, "civic"), strings.Contains(s, "econom"):
		return "social studies"
	case strings.Contains(s, "scien"):
		return "science"
	case strings.Contains(s, "engl"), strings.Contains(s, "language"):
		return "english"
	default:
		return "general"
	}
}

// bankFor returns the questions for a subject, falling back to the
// general bank.
func bankFor(subject string) []BankQuestion {
	if qs, ok := contentBanks[subjectKey(subject)]; ok {
		return qs
	}
	return contentBanks["general"]
}

// fillChapter substitutes the chapter placeholder, defaulting to a
// neutral phrase when the request named no chapter.
func fillChapter(text, chapter string) string {
	if strings.TrimSpace(chapter) == "" {
		chapter = "this chapter"
	}
	return strings.ReplaceAll(text, "{chapter}", chapter)
}

// styleReferences picks up to three bank questions to show the LLM as
// style anchors. Selection is positional, so identical requests embed
// identical references.
func styleReferences(subject, chapter string) []string {
	bank := bankFor(subject)
	var refs []string
	for _, q := range bank {
		if q.Kind == KindMatch {
			continue
		}
		refs = append(refs, fillChapter(q.Text, chapter))
		if len(refs) == 3 {
			break
		}
	}
	return refs
}
