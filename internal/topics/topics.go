// Package topics holds the fixed catalog of interview sub-topics and the
// evidence category each one draws its grounding passages from.
package topics

import (
	"fmt"
	"slices"
	"strings"
)

// Topic identifies one interview sub-topic.
type Topic string

const (
	Attendance   Topic = "attendance"
	Grades       Topic = "grades"
	Club         Topic = "club"
	Leadership   Topic = "leadership"
	Character    Topic = "character"
	Career       Topic = "career"
	Reading      Topic = "reading"
	Volunteering Topic = "volunteering"
)

// Category is the evidence category a record chunk is classified into.
type Category string

const (
	CategoryAttendance   Category = "attendance"
	CategoryGrades       Category = "grades"
	CategorySubjectNotes Category = "subject-notes"
	CategoryAwards       Category = "awards"
	CategoryReading      Category = "reading"
	CategoryActivities   Category = "activities"
	CategoryOther        Category = "other"
)

type entry struct {
	label     string
	category  Category
	query     string
	guideline string
}

// catalog order is the canonical topic order.
var order = []Topic{
	Attendance, Grades, Club, Leadership,
	Character, Career, Reading, Volunteering,
}

var catalog = map[Topic]entry{
	Attendance: {
		label:     "출결",
		category:  CategoryAttendance,
		query:     "출결 상황 결석 지각 조퇴 성실성",
		guideline: "Patterns and reasons behind absences or lateness; diligence.",
	},
	Grades: {
		label:     "성적",
		category:  CategoryGrades,
		query:     "교과 성적 추이 전공 관련 과목 학업 성취",
		guideline: "Grade trends in major-related subjects and the reasons for change.",
	},
	Club: {
		label:     "동아리",
		category:  CategoryActivities,
		query:     "동아리 활동 프로젝트 역할 문제 해결",
		guideline: "The candidate's role in club projects and how problems were solved.",
	},
	Leadership: {
		label:     "리더십",
		category:  CategorySubjectNotes,
		query:     "리더십 갈등 해결 협업 팀 활동",
		guideline: "How conflicts were resolved while leading or working in a team.",
	},
	Character: {
		label:     "인성/태도",
		category:  CategorySubjectNotes,
		query:     "행동 특성 종합 의견 인성 태도 배려",
		guideline: "The candidate's defining traits as recorded in teacher remarks.",
	},
	Career: {
		label:     "진로/자율",
		category:  CategoryActivities,
		query:     "진로 희망 자율 활동 전공 관심 계기",
		guideline: "What sparked interest in the intended major and how activities connect to it.",
	},
	Reading: {
		label:     "독서",
		category:  CategoryReading,
		query:     "독서 활동 도서 저자 가치관 탐구",
		guideline: "How books shaped the candidate's values or inquiry.",
	},
	Volunteering: {
		label:     "봉사",
		category:  CategoryActivities,
		query:     "봉사 활동 지속성 배운 점",
		guideline: "Continuity of volunteer work and what was learned from it.",
	},
}

// All returns every topic in catalog order.
func All() []Topic {
	return slices.Clone(order)
}

// Remaining returns the catalog topics not present in asked, in catalog order.
func Remaining(asked []Topic) []Topic {
	out := make([]Topic, 0, len(order))
	for _, t := range order {
		if !slices.Contains(asked, t) {
			out = append(out, t)
		}
	}
	return out
}

// Parse resolves a topic from its identifier or its Korean label.
func Parse(s string) (Topic, error) {
	s = strings.TrimSpace(s)
	if _, ok := catalog[Topic(s)]; ok {
		return Topic(s), nil
	}
	for t, e := range catalog {
		if e.label == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown topic %q", s)
}

// Valid reports whether t is part of the catalog.
func (t Topic) Valid() bool {
	_, ok := catalog[t]
	return ok
}

func (t Topic) Label() string { return catalog[t].label }

// Category returns the evidence category used to ground questions on t.
// Unknown topics map to CategoryOther.
func (t Topic) Category() Category {
	if e, ok := catalog[t]; ok {
		return e.category
	}
	return CategoryOther
}

// Query is the text embedded to rank record passages for t.
func (t Topic) Query() string {
	if e, ok := catalog[t]; ok {
		return e.query
	}
	return string(t)
}

// Guideline describes what an opening question on t should explore.
func (t Topic) Guideline() string { return catalog[t].guideline }

func (t Topic) String() string { return string(t) }
