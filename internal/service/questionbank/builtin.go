package questionbank

import "github.com/yourusername/spectra-quiz/internal/domain/entity"

type builtinQuestion struct {
	template    string
	options     []string
	correct     string
	explanation string
	category    string
	spectrum    *entity.SpectrumParams
}

var builtinQuestions = []builtinQuestion{
	{
		template:    "What type of functional group is indicated by a strong absorption around 1700 cm⁻¹ in {spectrum}?",
		options:     []string{"Alcohol", "Ketone", "Ester", "Amine"},
		correct:     "Ketone",
		explanation: "A strong C=O stretch near 1715 cm⁻¹ without an O–H or C–O band points to a ketone.",
		category:    "IR",
		spectrum: &entity.SpectrumParams{Kind: "IR", XMin: 4000, XMax: 500, Peaks: []entity.Peak{
			{Position: 2960, Intensity: 0.45, Width: 60},
			{Position: 1715, Intensity: 1.0, Width: 30},
			{Position: 1365, Intensity: 0.35, Width: 25},
		}},
	},
	{
		template:    "What splitting pattern would you expect for a methyl group adjacent to a methylene group in {spectrum}?",
		options:     []string{"Singlet", "Doublet", "Triplet", "Quartet"},
		correct:     "Triplet",
		explanation: "Two neighbouring protons split the CH₃ signal into n+1 = 3 lines.",
		category:    "1H NMR",
		spectrum: &entity.SpectrumParams{Kind: "1H NMR", XMin: 10, XMax: 0, Peaks: []entity.Peak{
			{Position: 1.18, Intensity: 0.5, Width: 0.02},
			{Position: 1.25, Intensity: 1.0, Width: 0.02},
			{Position: 1.32, Intensity: 0.5, Width: 0.02},
		}},
	},
	{
		template:    "A broad band between 3200 and 3550 cm⁻¹ dominates {spectrum}. Which functional group is present?",
		options:     []string{"Alcohol", "Aldehyde", "Alkene", "Nitrile"},
		correct:     "Alcohol",
		explanation: "Hydrogen-bonded O–H stretching gives a broad band centred near 3350 cm⁻¹.",
		category:    "IR",
		spectrum: &entity.SpectrumParams{Kind: "IR", XMin: 4000, XMax: 500, Peaks: []entity.Peak{
			{Position: 3350, Intensity: 0.9, Width: 250},
			{Position: 2950, Intensity: 0.5, Width: 60},
			{Position: 1050, Intensity: 0.7, Width: 40},
		}},
	},
	{
		template:    "A sharp, medium-intensity band appears near 2250 cm⁻¹ in {spectrum}. Which group is responsible?",
		options:     []string{"Alkyne", "Nitrile", "Carbonyl", "Amine"},
		correct:     "Nitrile",
		explanation: "The C≡N stretch is sharp and sits around 2250 cm⁻¹, slightly above a typical C≡C.",
		category:    "IR",
		spectrum: &entity.SpectrumParams{Kind: "IR", XMin: 4000, XMax: 500, Peaks: []entity.Peak{
			{Position: 2950, Intensity: 0.4, Width: 60},
			{Position: 2250, Intensity: 0.6, Width: 15},
		}},
	},
	{
		template:    "A one-proton singlet at 9.8 ppm appears in {spectrum}. Which functional group does it indicate?",
		options:     []string{"Carboxylic acid", "Aldehyde", "Aromatic ring", "Alcohol"},
		correct:     "Aldehyde",
		explanation: "The aldehyde C–H proton is strongly deshielded and resonates between 9 and 10 ppm.",
		category:    "1H NMR",
		spectrum: &entity.SpectrumParams{Kind: "1H NMR", XMin: 12, XMax: 0, Peaks: []entity.Peak{
			{Position: 9.8, Intensity: 0.3, Width: 0.02},
			{Position: 2.4, Intensity: 0.6, Width: 0.03},
			{Position: 1.1, Intensity: 0.9, Width: 0.03},
		}},
	},
	{
		template:    "A five-proton multiplet near 7.3 ppm is the only aromatic signal in {spectrum}. What does it suggest?",
		options:     []string{"Monosubstituted benzene", "Para-disubstituted benzene", "Alkene", "Pyridine"},
		correct:     "Monosubstituted benzene",
		explanation: "Five aromatic protons in one cluster are typical of a C₆H₅ group.",
		category:    "1H NMR",
		spectrum: &entity.SpectrumParams{Kind: "1H NMR", XMin: 10, XMax: 0, Peaks: []entity.Peak{
			{Position: 7.28, Intensity: 1.0, Width: 0.08},
			{Position: 2.35, Intensity: 0.6, Width: 0.02},
		}},
	},
	{
		template:    "The molecular ion in {spectrum} is accompanied by an M+2 peak of almost equal height. Which element is present?",
		options:     []string{"Chlorine", "Bromine", "Sulfur", "Nitrogen"},
		correct:     "Bromine",
		explanation: "⁷⁹Br and ⁸¹Br are nearly equally abundant, giving a 1:1 M/M+2 pattern.",
		category:    "MS",
		spectrum: &entity.SpectrumParams{Kind: "MS", XMin: 40, XMax: 140, Peaks: []entity.Peak{
			{Position: 122, Intensity: 1.0, Width: 0.4},
			{Position: 124, Intensity: 0.97, Width: 0.4},
			{Position: 43, Intensity: 0.8, Width: 0.4},
		}},
	},
	{
		template:    "The molecular ion in {spectrum} shows an M+2 peak about one third of its height. Which element is present?",
		options:     []string{"Chlorine", "Bromine", "Iodine", "Fluorine"},
		correct:     "Chlorine",
		explanation: "³⁵Cl and ³⁷Cl occur in roughly a 3:1 ratio.",
		category:    "MS",
		spectrum: &entity.SpectrumParams{Kind: "MS", XMin: 20, XMax: 100, Peaks: []entity.Peak{
			{Position: 78, Intensity: 1.0, Width: 0.4},
			{Position: 80, Intensity: 0.33, Width: 0.4},
			{Position: 43, Intensity: 0.7, Width: 0.4},
		}},
	},
	{
		template:    "A carbon signal near 207 ppm is present in {spectrum}. Which carbon does it belong to?",
		options:     []string{"Ester carbonyl", "Ketone carbonyl", "Aromatic carbon", "Nitrile carbon"},
		correct:     "Ketone carbonyl",
		explanation: "Ketone and aldehyde carbonyl carbons appear above 190 ppm, esters near 170 ppm.",
		category:    "13C NMR",
		spectrum: &entity.SpectrumParams{Kind: "13C NMR", XMin: 220, XMax: 0, Peaks: []entity.Peak{
			{Position: 207, Intensity: 0.4, Width: 0.5},
			{Position: 31, Intensity: 1.0, Width: 0.5},
		}},
	},
	{
		template:    "Two medium bands appear between 3300 and 3500 cm⁻¹ in {spectrum}. Which functional group fits best?",
		options:     []string{"Primary amine", "Secondary amine", "Alcohol", "Amide"},
		correct:     "Primary amine",
		explanation: "An NH₂ group shows symmetric and asymmetric N–H stretches, so two bands.",
		category:    "IR",
		spectrum: &entity.SpectrumParams{Kind: "IR", XMin: 4000, XMax: 500, Peaks: []entity.Peak{
			{Position: 3440, Intensity: 0.45, Width: 40},
			{Position: 3360, Intensity: 0.45, Width: 40},
			{Position: 1620, Intensity: 0.5, Width: 30},
		}},
	},
	{
		template:    "A broad one-proton singlet near 11.5 ppm appears in {spectrum}. What is its source?",
		options:     []string{"Aldehyde proton", "Carboxylic acid proton", "Phenol proton", "Amide proton"},
		correct:     "Carboxylic acid proton",
		explanation: "Carboxylic acid O–H protons are the most deshielded common protons, 10–13 ppm.",
		category:    "1H NMR",
		spectrum: &entity.SpectrumParams{Kind: "1H NMR", XMin: 13, XMax: 0, Peaks: []entity.Peak{
			{Position: 11.5, Intensity: 0.25, Width: 0.3},
			{Position: 2.35, Intensity: 0.6, Width: 0.03},
			{Position: 1.15, Intensity: 0.9, Width: 0.03},
		}},
	},
	{
		template:    "A six-proton doublet at 1.2 ppm and a one-proton septet appear in {spectrum}. Which fragment is present?",
		options:     []string{"Ethyl group", "Isopropyl group", "tert-Butyl group", "Propyl group"},
		correct:     "Isopropyl group",
		explanation: "Two equivalent methyls split by one CH give a 6H doublet and a 1H septet.",
		category:    "1H NMR",
		spectrum: &entity.SpectrumParams{Kind: "1H NMR", XMin: 5, XMax: 0, Peaks: []entity.Peak{
			{Position: 1.2, Intensity: 1.0, Width: 0.03},
			{Position: 2.9, Intensity: 0.15, Width: 0.1},
		}},
	},
}

// Builtin возвращает встроенный банк с подстановками по умолчанию
func Builtin() *Bank {
	return BuiltinWith(DefaultEasyPlaceholder, DefaultHardPlaceholder)
}

// BuiltinWith возвращает встроенный банк с заданными текстами подстановки
func BuiltinWith(easyText, hardText string) *Bank {
	easyText = orDefault(easyText, DefaultEasyPlaceholder)
	hardText = orDefault(hardText, DefaultHardPlaceholder)

	questions := make([]entity.Question, 0, len(builtinQuestions))
	for _, bq := range builtinQuestions {
		questions = append(questions, entity.Question{
			Prompt:        Instantiate(bq.template, easyText),
			PromptHard:    Instantiate(bq.template, hardText),
			Options:       bq.options,
			CorrectAnswer: bq.correct,
			Explanation:   bq.explanation,
			Category:      bq.category,
			Spectrum:      bq.spectrum,
		})
	}
	return New(questions)
}
