package truth

import "cognerd/internal/fuzzy"

// Revision pools the evidence of two judgments on the same content.
func Revision(v1, v2 Value) Value {
	w1 := C2W(v1.Confidence)
	w2 := C2W(v2.Confidence)
	w := w1 + w2
	if w == 0 {
		return New(fuzzy.AveAri(v1.Frequency, v2.Frequency), 0)
	}
	return New((w1*v1.Frequency+w2*v2.Frequency)/w, W2C(w))
}

// Deduction: {M --> P <v1>, S --> M <v2>} |- S --> P.
func Deduction(v1, v2 Value) Value {
	f := fuzzy.And(v1.Frequency, v2.Frequency)
	c := fuzzy.And(f, v1.Confidence, v2.Confidence)
	return New(f, c)
}

// Abduction: {P --> M <v1>, S --> M <v2>} |- S --> P.
func Abduction(v1, v2 Value) Value {
	w := fuzzy.And(v1.Frequency, v1.Confidence, v2.Confidence)
	return New(v2.Frequency, W2C(w))
}

// Induction: {M --> P <v1>, M --> S <v2>} |- S --> P.
func Induction(v1, v2 Value) Value {
	w := fuzzy.And(v2.Frequency, v1.Confidence, v2.Confidence)
	return New(v1.Frequency, W2C(w))
}
