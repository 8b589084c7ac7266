package main

// forms.go turns admin form posts into workflow inputs. Field names follow
// the admin panel's forms.

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

// formFile reads an optional file field. A missing field is not an error.
func formFile(r *http.Request, key string, limit int64) (*Upload, error) {
	f, header, err := r.FormFile(key)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, invalid("%s: %v", key, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, invalid("%s: %v", key, err)
	}
	if int64(len(data)) > limit {
		return nil, invalid("%s is larger than %d bytes", key, limit)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &Upload{Filename: header.Filename, Data: data}, nil
}

func parseForm(r *http.Request, limit int64) error {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(limit)
	} else {
		err = r.ParseForm()
	}
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &tooLarge):
		return invalid("request body is larger than %d bytes", tooLarge.Limit)
	default:
		return invalid("invalid form: %v", err)
	}
}

func skillForm(r *http.Request, limit int64) (SkillInput, error) {
	if err := parseForm(r, limit); err != nil {
		return SkillInput{}, err
	}
	image, err := formFile(r, "image", limit)
	if err != nil {
		return SkillInput{}, err
	}
	return SkillInput{
		Name:            formValue(r, "name"),
		Category:        formValue(r, "category"),
		ExistingImage:   formValue(r, "existingImage"),
		ExistingImageID: formValue(r, "existingImageId"),
		Image:           image,
	}, nil
}

func projectForm(r *http.Request, limit int64) (ProjectInput, error) {
	if err := parseForm(r, limit); err != nil {
		return ProjectInput{}, err
	}
	image, err := formFile(r, "image", limit)
	if err != nil {
		return ProjectInput{}, err
	}
	skills, err := parseSkillIDs(r.FormValue("skills"))
	if err != nil {
		return ProjectInput{}, err
	}
	return ProjectInput{
		Title:           formValue(r, "title"),
		Problem:         formValue(r, "problem"),
		Description:     r.FormValue("description"),
		Skills:          skills,
		GithubURL:       formValue(r, "githubUrl"),
		DemoURL:         formValue(r, "demoUrl"),
		Tagline:         formValue(r, "tagline"),
		ExistingImage:   formValue(r, "existingImage"),
		ExistingImageID: formValue(r, "existingImageId"),
		Image:           image,
	}, nil
}

// parseSkillIDs reads the JSON array the project form sends. Empty means none.
func parseSkillIDs(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, invalid("skills must be a JSON array of ids: %v", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func articleForm(r *http.Request, limit int64) (ArticleInput, error) {
	if err := parseForm(r, limit); err != nil {
		return ArticleInput{}, err
	}
	image, err := formFile(r, "image", limit)
	if err != nil {
		return ArticleInput{}, err
	}
	return ArticleInput{
		Title:           formValue(r, "title"),
		Tagline:         formValue(r, "tagline"),
		Description:     r.FormValue("description"),
		ExistingImage:   formValue(r, "existingImage"),
		ExistingImageID: formValue(r, "existingImageId"),
		Image:           image,
	}, nil
}

func resumeForm(r *http.Request, limit int64) (*Upload, error) {
	if err := parseForm(r, limit); err != nil {
		return nil, err
	}
	return formFile(r, "resume", limit)
}
