package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/oauth2"

	"segment-leader/internal/analysis"
	"segment-leader/internal/auth"
	"segment-leader/internal/polyline"
	"segment-leader/internal/strava"
)

// StravaClient is the subset of the Strava API the ranking pipeline uses
type StravaClient interface {
	GetActivity(ctx context.Context, id int64, token *oauth2.Token) (*strava.Activity, error)
	GetSegment(ctx context.Context, id int64, token *oauth2.Token) (*strava.Segment, error)
}

// RankOptions controls one ranking run
type RankOptions struct {
	Gender   strava.Gender   // defaults to men
	Filter   analysis.Filter // defaults to all
	PRFilter int             // keep efforts with pr_rank <= PRFilter; 0 disables
}

// Ranking is the result of one pipeline run
type Ranking struct {
	Activity   *strava.Activity
	Rows       []analysis.RankedSegment
	Considered int // efforts left after selection and the PR filter
}

// RankingService ranks an activity's segment efforts against the segment
// leaders
type RankingService struct {
	client   StravaClient
	selector analysis.Selector
	logger   *log.Logger
}

// NewRankingService creates a ranking service
func NewRankingService(client StravaClient, selector analysis.Selector) *RankingService {
	return &RankingService{
		client:   client,
		selector: selector,
	}
}

// SetLogger enables logging of degraded leader lookups
func (s *RankingService) SetLogger(l *log.Logger) {
	s.logger = l
}

// Rank returns the activity's ranked segments, closest to the leader first
func (s *RankingService) Rank(ctx context.Context, token auth.Token, activityID int64, opts RankOptions) ([]analysis.RankedSegment, error) {
	r, err := s.RankActivity(ctx, token, activityID, opts)
	if err != nil {
		return nil, err
	}
	return r.Rows, nil
}

// RankActivity runs the pipeline: fetch the activity, select efforts, apply
// the PR filter, look up each leader time, then sort.
func (s *RankingService) RankActivity(ctx context.Context, token auth.Token, activityID int64, opts RankOptions) (*Ranking, error) {
	tok := token.OAuth2()

	activity, err := s.client.GetActivity(ctx, activityID, tok)
	if err != nil {
		return nil, err
	}

	filter := opts.Filter
	if filter == "" {
		filter = analysis.FilterAll
	}
	gender := opts.Gender
	if gender == "" {
		gender = strava.Men
	}

	efforts := analysis.EffortsFromActivity(activity)
	efforts = s.selector.Select(efforts, filter, activity.IsRide())
	efforts = analysis.FilterPRRank(efforts, opts.PRFilter)

	rows := make([]analysis.RankedSegment, 0, len(efforts))
	for _, e := range efforts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		leader, err := s.leaderTime(ctx, tok, e.SegmentID, gender)
		if err != nil {
			if fatal(ctx, err) {
				return nil, err
			}
			row := analysis.NewRankedSegment(e, 0)
			row.LookupErr = err
			rows = append(rows, row)
			s.logf("segment %d (%s) left unranked: %v", e.SegmentID, e.Name, err)
			continue
		}

		rows = append(rows, analysis.NewRankedSegment(e, leader.ElapsedTime))
	}

	analysis.SortByDifference(rows)

	return &Ranking{
		Activity:   activity,
		Rows:       rows,
		Considered: len(efforts),
	}, nil
}

func (s *RankingService) leaderTime(ctx context.Context, tok *oauth2.Token, segmentID int64, gender strava.Gender) (strava.LeaderTime, error) {
	seg, err := s.client.GetSegment(ctx, segmentID, tok)
	if err != nil {
		return strava.LeaderTime{}, err
	}
	return seg.LeaderTime(gender)
}

// fatal reports errors that end the whole run instead of degrading one row.
// A timeout on a single request only degrades its row; the run stops on
// context errors once the caller's ctx is done.
func fatal(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, strava.ErrRateLimitExceeded) ||
		errors.Is(err, strava.ErrUnauthorized)
}

// ActivityPath returns the decoded route of an activity
func (s *RankingService) ActivityPath(ctx context.Context, token auth.Token, activityID int64) ([]polyline.Coordinate, error) {
	a, err := s.client.GetActivity(ctx, activityID, token.OAuth2())
	if err != nil {
		return nil, err
	}
	coords, err := polyline.Decode(a.Map.Encoded())
	if err != nil {
		return nil, fmt.Errorf("decoding activity %d path: %w", activityID, err)
	}
	return coords, nil
}

// SegmentPath returns the decoded route of a segment
func (s *RankingService) SegmentPath(ctx context.Context, token auth.Token, segmentID int64) ([]polyline.Coordinate, error) {
	seg, err := s.client.GetSegment(ctx, segmentID, token.OAuth2())
	if err != nil {
		return nil, err
	}
	coords, err := polyline.Decode(seg.Map.Encoded())
	if err != nil {
		return nil, fmt.Errorf("decoding segment %d path: %w", segmentID, err)
	}
	return coords, nil
}

func (s *RankingService) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
