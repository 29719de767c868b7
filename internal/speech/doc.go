// Package speech handles voice input and output.
//
// Output goes through a Queue: any number of goroutines may Enqueue text, a
// single worker goroutine owns the Speaker and vocalizes utterances one at a
// time in enqueue order. Input goes through a Recognizer, which turns one
// spoken phrase into text.
package speech
