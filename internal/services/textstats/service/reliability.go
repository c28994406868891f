package service

import (
	"context"

	"subshift/internal/core/stats"
	perr "subshift/internal/platform/errors"
	"subshift/internal/platform/logger"
	"subshift/internal/platform/tabular"
	"subshift/internal/services/textstats/domain"
)

// ICC report columns, named after pingouin's output
var iccColumns = []string{"Type", "Description", "ICC", "F", "df1", "df2", "pval", "CI95_lo", "CI95_hi", "n", "k"}

// Reliability treats the two rating columns as raters and every row as a
// target. Rows missing either rating are dropped before ICC(2,1) is computed.
func (s *Service) Reliability(ctx context.Context) (domain.Report, error) {
	in, err := s.input("textstats.reliability")
	if err != nil {
		return domain.Report{}, err
	}
	a, b := in.Index(s.Cfg.RaterA), in.Index(s.Cfg.RaterB)
	if a < 0 || b < 0 {
		return domain.Report{}, perr.InvalidArgf("textstats: input %s needs rating columns %q and %q", s.Cfg.In, s.Cfg.RaterA, s.Cfg.RaterB)
	}

	rep := domain.Report{Rows: in.Len()}
	var ratings [][]float64
	for i := range in.Len() {
		x, okA := parseFloat(in.String(i, a))
		y, okB := parseFloat(in.String(i, b))
		if !okA || !okB {
			rep.Dropped++
			continue
		}
		ratings = append(ratings, []float64{x, y})
	}
	rep.Kept = len(ratings)

	icc, err := stats.ICC2(ratings)
	if err != nil {
		return rep, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "textstats: reliability")
	}
	rep.ICC = &icc

	out := tabular.New(iccColumns...)
	out.Append("ICC2", "Single random raters", finite(icc.Value), finite(icc.F), icc.DF1, icc.DF2,
		finite(icc.P), finite(icc.CI95[0]), finite(icc.CI95[1]), icc.N, icc.K)
	if rep.Path, err = s.write(ctx, out, s.Cfg.Out); err != nil {
		return rep, err
	}
	logger.C(ctx).Info().Float64("icc", icc.Value).Float64("p", icc.P).Int("n", icc.N).Msg("reliability")
	return rep, nil
}
