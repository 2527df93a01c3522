// Package debate coordinates multi-provider debates: one question, a
// panel of LLM providers answering concurrently round by round, and a
// final moderator synthesis. Providers never see each other's output
// from the round in progress; prior rounds are injected into each
// provider's prompt with that provider's own answers excluded.
package debate
