package database

import (
	"encoding/json"
	"fmt"

	"github.com/hanningtontech/nurse-connect-app-sub002/internal/entity"
	"gorm.io/gorm"
)

type bankTemplate struct {
	ID            string
	Difficulty    string
	Topic         string
	Question      string
	Options       []string
	CorrectOption string
	Rationale     string
}

// FlashcardBankData - static fallback content served when generation is
// disabled or the generator fails. Every entry carries exactly 4 distinct
// options with the correct one among them.
var FlashcardBankData = []bankTemplate{
	// ==================== EASY ====================
	{ID: "e-fund-1", Difficulty: "easy", Topic: "fundamentals",
		Question:      "What is the normal resting heart rate range for a healthy adult?",
		Options:       []string{"60-100 beats per minute", "40-60 beats per minute", "100-120 beats per minute", "120-140 beats per minute"},
		CorrectOption: "60-100 beats per minute",
		Rationale:     "A healthy adult's resting heart rate falls between 60 and 100 beats per minute; rates outside this range warrant assessment."},
	{ID: "e-fund-2", Difficulty: "easy", Topic: "fundamentals",
		Question:      "Which position is most appropriate for a client experiencing dyspnea?",
		Options:       []string{"High Fowler's", "Supine", "Trendelenburg", "Prone"},
		CorrectOption: "High Fowler's",
		Rationale:     "High Fowler's position promotes maximum lung expansion and eases the work of breathing."},
	{ID: "e-fund-3", Difficulty: "easy", Topic: "infection-control",
		Question:      "What is the single most effective measure to prevent the spread of infection?",
		Options:       []string{"Hand hygiene", "Wearing gloves at all times", "Prophylactic antibiotics", "Isolating every client"},
		CorrectOption: "Hand hygiene",
		Rationale:     "Hand hygiene remains the most effective intervention for breaking the chain of infection."},
	{ID: "e-vitals-1", Difficulty: "easy", Topic: "fundamentals",
		Question:      "Which vital sign value should the nurse report immediately for an adult client?",
		Options:       []string{"Oxygen saturation of 86% on room air", "Temperature of 37.2°C", "Respiratory rate of 16 per minute", "Blood pressure of 118/76 mmHg"},
		CorrectOption: "Oxygen saturation of 86% on room air",
		Rationale:     "Saturation below 90% indicates hypoxemia and requires prompt intervention; the other values are within normal limits."},
	{ID: "e-pharm-1", Difficulty: "easy", Topic: "pharm",
		Question:      "Before administering any medication, which identifier check is required?",
		Options:       []string{"Two client identifiers", "Room number only", "Client's verbal confirmation only", "Wristband color"},
		CorrectOption: "Two client identifiers",
		Rationale:     "Safe medication administration requires verifying at least two acceptable identifiers, such as name and date of birth."},
	// ==================== MEDIUM ====================
	{ID: "m-cardio-1", Difficulty: "medium", Topic: "cardio",
		Question:      "A client with heart failure gained 2 kg in 24 hours. What should the nurse do first?",
		Options:       []string{"Assess for edema and lung sounds", "Encourage increased fluid intake", "Document the finding as expected", "Schedule a dietitian consult"},
		CorrectOption: "Assess for edema and lung sounds",
		Rationale:     "Rapid weight gain in heart failure suggests fluid retention; assessment for overload comes before any other action."},
	{ID: "m-pharm-1", Difficulty: "medium", Topic: "pharm",
		Question:      "Which assessment is required before administering digoxin?",
		Options:       []string{"Apical pulse for one full minute", "Blood pressure in both arms", "Pupil response", "Bowel sounds"},
		CorrectOption: "Apical pulse for one full minute",
		Rationale:     "Digoxin slows conduction; hold the dose and notify the provider if the apical pulse is below 60 beats per minute."},
	{ID: "m-resp-1", Difficulty: "medium", Topic: "resp",
		Question:      "A client with COPD is receiving oxygen. Which flow rate is most appropriate?",
		Options:       []string{"2 L/min via nasal cannula", "10 L/min via non-rebreather", "6 L/min via simple mask", "15 L/min via venturi mask"},
		CorrectOption: "2 L/min via nasal cannula",
		Rationale:     "Clients with COPD may rely on hypoxic drive; low-flow oxygen avoids suppressing the stimulus to breathe."},
	{ID: "m-endo-1", Difficulty: "medium", Topic: "endo",
		Question:      "A diabetic client is diaphoretic, shaky, and confused. What should the nurse do first?",
		Options:       []string{"Check the blood glucose level", "Administer scheduled insulin", "Give a complex carbohydrate snack", "Call the provider"},
		CorrectOption: "Check the blood glucose level",
		Rationale:     "The symptoms suggest hypoglycemia; confirming with a glucose reading guides the correct intervention."},
	{ID: "m-safety-1", Difficulty: "medium", Topic: "safety",
		Question:      "Which client should the nurse assess first after receiving shift report?",
		Options:       []string{"A client with new-onset chest pain", "A client requesting pain medication for a headache", "A client awaiting discharge teaching", "A client scheduled for physical therapy"},
		CorrectOption: "A client with new-onset chest pain",
		Rationale:     "New-onset chest pain may signal myocardial ischemia and takes priority over stable or routine needs."},
	// ==================== HARD ====================
	{ID: "h-cardio-1", Difficulty: "hard", Topic: "cardio",
		Question:      "A client's potassium is 6.8 mEq/L. Which ECG change should the nurse anticipate?",
		Options:       []string{"Tall peaked T waves", "Prominent U waves", "Shortened PR interval", "ST segment elevation"},
		CorrectOption: "Tall peaked T waves",
		Rationale:     "Hyperkalemia accelerates repolarization, classically producing tall peaked T waves before wider QRS changes."},
	{ID: "h-pharm-1", Difficulty: "hard", Topic: "pharm",
		Question:      "A client on warfarin has an INR of 6.2 with no bleeding. Which order should the nurse anticipate?",
		Options:       []string{"Hold warfarin and give oral vitamin K", "Continue the current warfarin dose", "Administer protamine sulfate", "Transfuse fresh frozen plasma immediately"},
		CorrectOption: "Hold warfarin and give oral vitamin K",
		Rationale:     "An INR above 5 without bleeding is managed by holding warfarin and giving vitamin K; protamine reverses heparin, and FFP is reserved for active bleeding."},
	{ID: "h-neuro-1", Difficulty: "hard", Topic: "neuro",
		Question:      "A client with a head injury has a fixed, dilated right pupil. What does this finding indicate?",
		Options:       []string{"Compression of cranial nerve III from herniation", "Normal variant requiring no action", "Hypoglycemic episode", "Medication side effect of beta blockers"},
		CorrectOption: "Compression of cranial nerve III from herniation",
		Rationale:     "A unilateral fixed, dilated pupil after head trauma signals uncal herniation compressing the oculomotor nerve and is a neurosurgical emergency."},
	{ID: "h-resp-1", Difficulty: "hard", Topic: "resp",
		Question:      "Which arterial blood gas result indicates uncompensated respiratory acidosis?",
		Options:       []string{"pH 7.28, PaCO2 56, HCO3 24", "pH 7.48, PaCO2 30, HCO3 22", "pH 7.35, PaCO2 55, HCO3 30", "pH 7.30, PaCO2 38, HCO3 18"},
		CorrectOption: "pH 7.28, PaCO2 56, HCO3 24",
		Rationale:     "A low pH with elevated PaCO2 and normal bicarbonate shows a respiratory acidosis the kidneys have not yet compensated."},
	// ==================== EXPERT ====================
	{ID: "x-priority-1", Difficulty: "expert", Topic: "delegation",
		Question:      "The charge nurse must assign one nurse to four clients. Which client is appropriate for a nurse floated from a postpartum unit?",
		Options:       []string{"A stable client awaiting discharge after cholecystectomy", "A client on a titrating nitroglycerin drip", "A client in tracheostomy crisis", "A client receiving chemotherapy induction"},
		CorrectOption: "A stable client awaiting discharge after cholecystectomy",
		Rationale:     "Floated staff receive the most stable, predictable client; titrating drips, airway emergencies, and chemotherapy require specialty competencies."},
	{ID: "x-multi-1", Difficulty: "expert", Topic: "multi-system",
		Question:      "A septic client has MAP 58 mmHg after 30 mL/kg crystalloid. Which intervention should the nurse anticipate next?",
		Options:       []string{"Initiation of norepinephrine", "A second fluid bolus of 30 mL/kg", "Oral antihypertensive hold only", "Placement in Trendelenburg position"},
		CorrectOption: "Initiation of norepinephrine",
		Rationale:     "Persistent hypotension after adequate fluid resuscitation in sepsis is treated with vasopressors, norepinephrine first-line, to keep MAP at or above 65 mmHg."},
	{ID: "x-pharm-1", Difficulty: "expert", Topic: "pharm",
		Question:      "A client taking an MAOI is prescribed meperidine for pain. What is the nurse's best action?",
		Options:       []string{"Question the order before administration", "Give the dose with food", "Administer half the prescribed dose", "Give the dose and monitor sedation"},
		CorrectOption: "Question the order before administration",
		Rationale:     "Meperidine with an MAOI can precipitate serotonin syndrome; the combination is contraindicated and the order must be challenged."},
}

// SeedFlashcardBank - load the fallback bank once; reruns are no-ops
func SeedFlashcardBank(db *gorm.DB) error {
	var count int64
	db.Model(&entity.FlashcardBankTemplate{}).Count(&count)
	if count > 0 {
		return nil
	}

	for _, tpl := range FlashcardBankData {
		optionsJSON, err := json.Marshal(tpl.Options)
		if err != nil {
			return fmt.Errorf("failed to marshal options for %s: %w", tpl.ID, err)
		}

		template := entity.FlashcardBankTemplate{
			TemplateID:    tpl.ID,
			Difficulty:    tpl.Difficulty,
			Topic:         tpl.Topic,
			Question:      tpl.Question,
			Options:       string(optionsJSON),
			CorrectOption: tpl.CorrectOption,
			Rationale:     tpl.Rationale,
		}

		if err := db.Create(&template).Error; err != nil {
			return fmt.Errorf("failed to seed template %s: %w", tpl.ID, err)
		}
	}

	return nil
}
