package ctcnet

import "github.com/unixpickle/anydiff"

// ConcatRows joins two packed matrices with the same
// number of rows side by side, producing
// [in1[0], in2[0], in1[1], in2[1], ...], where in1[n] is
// the n-th row of in1.
func ConcatRows(in1, in2 anydiff.Res, rows int) anydiff.Res {
	return anydiff.Pool(in1, func(in1 anydiff.Res) anydiff.Res {
		return anydiff.Pool(in2, func(in2 anydiff.Res) anydiff.Res {
			var res []anydiff.Res
			v1Len := in1.Output().Len() / rows
			v2Len := in2.Output().Len() / rows
			for i := 0; i < rows; i++ {
				res = append(res, anydiff.Slice(in1, i*v1Len, (i+1)*v1Len),
					anydiff.Slice(in2, i*v2Len, (i+1)*v2Len))
			}
			return anydiff.Concat(res...)
		})
	})
}
