package service

import (
	"context"
	"strings"

	"subshift/internal/platform/logger"
	"subshift/internal/platform/tabular"
	"subshift/internal/services/correlate/domain"
)

// Membership columns
const (
	ColMemberUser        = "user_id"
	ColMemberCommunities = "communities"
	ColMemberActivity    = "activity_count"
)

// Membership indexes the source community and, for each user, scans their
// recent history for items in any of Targets. Users with no match are left out.
// Communities are reported once each, in first-seen order, under the configured spelling.
func (s *Service) Membership(ctx context.Context) (domain.Summary, error) {
	log := logger.C(ctx).With().Str("component", "membership").Str("source", s.Cfg.Source).Logger()

	canonical := make(map[string]string, len(s.Cfg.Targets))
	for _, t := range s.Cfg.Targets {
		canonical[strings.ToLower(t)] = t
	}

	idx, runErr := s.Indexer.BuildIndex(ctx, s.Cfg.Source, s.Cfg.Limit)
	if idx == nil {
		return domain.Summary{}, runErr
	}
	table := tabular.New(ColMemberUser, ColMemberCommunities, ColMemberActivity)
	sum := domain.Summary{Users: idx.Len()}

	for i, user := range idx.Users() {
		if runErr != nil || ctx.Err() != nil {
			break
		}
		if i > 0 {
			if err := s.Sleep(ctx, s.Cfg.MembershipWait); err != nil {
				break
			}
		}
		items, _ := s.history(ctx, user, "", s.Cfg.MembershipCap)

		var found []string
		seen := map[string]bool{}
		hits := 0
		for _, it := range items {
			name, ok := canonical[strings.ToLower(it.Community)]
			if !ok {
				continue
			}
			hits++
			if !seen[name] {
				seen[name] = true
				found = append(found, name)
			}
		}
		if hits == 0 {
			sum.Skipped++
			continue
		}
		table.Append(user, found, hits)
		sum.Rows++
	}
	if runErr == nil {
		runErr = ctx.Err()
	}

	path, err := s.Sink.Write(ctx, table, s.Cfg.MembershipOut)
	if err != nil {
		return sum, err
	}
	sum.Path = path
	log.Info().Int("users", sum.Users).Int("members", sum.Rows).Strs("targets", s.Cfg.Targets).
		Str("path", path).Msg("membership done")
	return sum, runErr
}
