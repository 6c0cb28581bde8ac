package service

import "github.com/learnify/backend/models"

// neighbor returns the index idx swaps with, or false at a boundary.
func neighbor(n, idx int, dir models.Direction) (int, bool) {
	switch dir {
	case models.Up:
		if idx <= 0 {
			return 0, false
		}
		return idx - 1, true
	case models.Down:
		if idx < 0 || idx >= n-1 {
			return 0, false
		}
		return idx + 1, true
	}
	return 0, false
}

// moveSection swaps the section with its neighbor and renumbers the copy.
// At a boundary the input is returned unchanged and moved is false.
func moveSection(list []models.Section, id string, dir models.Direction) (out []models.Section, moved bool, err error) {
	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return list, false, models.ErrSectionNotFound
	}
	j, ok := neighbor(len(list), idx, dir)
	if !ok {
		return list, false, nil
	}
	out = append([]models.Section(nil), list...)
	out[idx], out[j] = out[j], out[idx]
	return renumberSections(out), true, nil
}

func moveLecture(list []models.Lecture, id string, dir models.Direction) (out []models.Lecture, moved bool, err error) {
	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return list, false, models.ErrLectureNotFound
	}
	j, ok := neighbor(len(list), idx, dir)
	if !ok {
		return list, false, nil
	}
	out = append([]models.Lecture(nil), list...)
	out[idx], out[j] = out[j], out[idx]
	return renumberLectures(out), true, nil
}

func renumberSections(list []models.Section) []models.Section {
	for i := range list {
		list[i].Order = i
	}
	return list
}

func renumberLectures(list []models.Lecture) []models.Lecture {
	for i := range list {
		list[i].Order = i
	}
	return list
}

func withoutSection(list []models.Section, id string) ([]models.Section, bool) {
	out := make([]models.Section, 0, len(list))
	found := false
	for _, s := range list {
		if s.ID == id {
			found = true
			continue
		}
		out = append(out, s)
	}
	return renumberSections(out), found
}

func withoutLecture(list []models.Lecture, id string) ([]models.Lecture, bool) {
	out := make([]models.Lecture, 0, len(list))
	found := false
	for _, l := range list {
		if l.ID == id {
			found = true
			continue
		}
		out = append(out, l)
	}
	return renumberLectures(out), found
}
