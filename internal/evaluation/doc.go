// Package evaluation parses the language model's free-form grading
// response into a validated Evaluation. Model output is supposed to be
// a JSON object but is routinely wrapped in commentary or code fences
// and may carry trailing commas; this package tolerates all of that
// and reports unusable content with errors distinct from the upstream
// transport errors.
package evaluation
