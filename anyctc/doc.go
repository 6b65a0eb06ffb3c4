// Package anyctc implements Connectionist Temporal
// Classification (CTC) over padded, time-major logits.
// For more information on CTC, see this paper:
// http://www.cs.toronto.edu/~graves/icml_2006.pdf.
//
// Every frame has one score per label plus a final score
// for the special "blank" symbol, so a label space of N
// labels has N+1 classes and the blank is class N.
//
// The package provides the CTC cost (Loss), greedy and
// beam-search decoders (Decode), the label error rate
// (LER) and per-frame posteriors (Posteriors).
package anyctc
