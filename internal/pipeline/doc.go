// Package pipeline drives one build of a source unit through its stages:
// clean, compile, discover, classify, resolve, stage and transfer.
//
// Each run follows a plan chosen by its Mode. Every step moves a validated
// state machine one state forward, and every transition is logged and
// reported to an Observer. The run stops at the first failure and checks for
// cancellation between steps.
package pipeline
