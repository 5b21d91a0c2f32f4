package stubapi

// SeedCase is a case served by the stub backend together with its answers
type SeedCase struct {
	Topic               string
	DifferentialTopic   string
	PresentingComplaint string
	Diagnosis           string
	Treatment           string
}

// SeedCases is the default case bank
var SeedCases = []SeedCase{
	{
		Topic:             "Uncomplicated Malaria",
		DifferentialTopic: "Influenza",
		PresentingComplaint: "A 24-year-old market trader presents with three days of fever, chills, " +
			"headache and generalised body aches. BP 118/76 mmHg, random blood sugar 5.4 mmol/L, " +
			"no known allergies, no current medications.",
		Diagnosis: "Uncomplicated malaria",
		Treatment: "Oral artemether-lumefantrine twice daily for three days taken with fatty food; " +
			"paracetamol for fever and pain; encourage plenty of oral fluids and rest; " +
			"return immediately if vomiting, confusion or reduced urine output develops; " +
			"advise on insecticide-treated bed nets to prevent reinfection",
	},
	{
		Topic:             "Typhoid fever",
		DifferentialTopic: "Gastroenteritis",
		PresentingComplaint: "A 31-year-old accountant reports a week of gradually rising fever, abdominal " +
			"discomfort, constipation and loss of appetite. BP 110/70 mmHg, blood sugar normal, " +
			"no allergies, taking no medications.",
		Diagnosis: "Typhoid fever",
		Treatment: "Oral ciprofloxacin for seven to ten days, or azithromycin where resistance is suspected; " +
			"paracetamol for fever; oral rehydration and a soft diet",
	},
	{
		Topic:             "Peptic Ulcer Disease",
		DifferentialTopic: "Irritable Bowel Syndrome",
		PresentingComplaint: "A 45-year-old driver describes burning epigastric pain that wakes him at " +
			"night and eases after meals. He takes ibuprofen for back pain. BP 132/84 mmHg, " +
			"blood sugar normal, no allergies.",
		Diagnosis: "Peptic ulcer disease",
		Treatment: "Stop NSAIDs; oral omeprazole daily for eight weeks; triple therapy with amoxicillin " +
			"and clarithromycin if Helicobacter pylori positive; avoid alcohol and smoking",
	},
	{
		Topic:             "Urinary Tract Infection",
		DifferentialTopic: "Sexually Transmitted Infections in Adults",
		PresentingComplaint: "A 28-year-old woman has two days of burning on passing urine, frequency and " +
			"lower abdominal discomfort. No fever. BP 116/72 mmHg, blood sugar normal, no allergies, " +
			"no medications.",
		Diagnosis: "Uncomplicated cystitis",
		Treatment: "Oral nitrofurantoin for five days; increase fluid intake; paracetamol for discomfort",
	},
	{
		Topic:             "Gout",
		DifferentialTopic: "Cellulitis",
		PresentingComplaint: "A 52-year-old man woke with a hot, swollen and exquisitely painful right big " +
			"toe. He drinks beer most evenings and takes hydrochlorothiazide. BP 146/92 mmHg, " +
			"blood sugar normal, no allergies.",
		Diagnosis: "Acute gout",
		Treatment: "Oral naproxen or colchicine for the acute attack; rest and elevate the foot; " +
			"reduce alcohol and purine-rich food; review the thiazide diuretic",
	},
}
