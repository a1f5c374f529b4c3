package session

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/biztrack/internal/project"
)

// CreateProject adds a project for the signed-in user. It becomes active when
// activate is set or when the user had no active project.
func (s *Session) CreateProject(ctx context.Context, params project.CreateParams, activate bool) (*project.Project, error) {
	done, err := s.begin("createProject")
	if err != nil {
		return nil, err
	}
	defer done()

	u, err := s.requireUser()
	if err != nil {
		return nil, s.fail(ctx, "Creating project", err)
	}

	params = params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, s.fail(ctx, "Creating project", err)
	}

	p := project.New(u.ID, params, s.deps.Now())

	if err := s.deps.Projects.CreateProject(ctx, p); err != nil {
		return nil, s.fail(ctx, "Creating project", remoteErr("creating project", err))
	}

	c := *p

	s.mu.Lock()
	s.projects = append(s.projects, &c)
	makeActive := activate || s.activeID == uuid.Nil
	s.mu.Unlock()

	s.succeed(ctx, fmt.Sprintf("Project %q created", p.Name))

	if makeActive {
		if err := s.activate(ctx, u.ID, &c); err != nil {
			return p, err
		}
	}

	return p, nil
}

// UpdateProject changes a project's settings.
func (s *Session) UpdateProject(ctx context.Context, id uuid.UUID, patch project.Patch) (*project.Project, error) {
	done, err := s.begin("updateProject:" + id.String())
	if err != nil {
		return nil, err
	}
	defer done()

	u, err := s.requireUser()
	if err != nil {
		return nil, s.fail(ctx, "Updating project", err)
	}

	s.mu.Lock()
	found := s.projectLocked(id) != nil
	s.mu.Unlock()

	if !found {
		return nil, s.fail(ctx, "Updating project", ErrProjectNotFound)
	}

	if err := patch.Validate(); err != nil {
		return nil, s.fail(ctx, "Updating project", err)
	}

	if err := s.deps.Projects.UpdateProject(ctx, u.ID, id, patch); err != nil {
		return nil, s.fail(ctx, "Updating project", remoteErr("updating project", err))
	}

	s.mu.Lock()
	var updated project.Project
	for i, p := range s.projects {
		if p.ID == id {
			s.projects[i] = patch.Apply(p)
			updated = *s.projects[i]
		}
	}
	s.mu.Unlock()

	s.succeed(ctx, "Project updated")

	return &updated, nil
}

// DeleteProject removes a project with all of its transactions. When it was
// active, the first remaining project (or none) becomes active.
func (s *Session) DeleteProject(ctx context.Context, id uuid.UUID) error {
	done, err := s.begin("deleteProject:" + id.String())
	if err != nil {
		return err
	}
	defer done()

	u, err := s.requireUser()
	if err != nil {
		return s.fail(ctx, "Deleting project", err)
	}

	s.mu.Lock()
	found := s.projectLocked(id) != nil
	s.mu.Unlock()

	if !found {
		return s.fail(ctx, "Deleting project", ErrProjectNotFound)
	}

	if err := s.deps.Projects.DeleteProject(ctx, u.ID, id); err != nil {
		return s.fail(ctx, "Deleting project", remoteErr("deleting project", err))
	}

	s.mu.Lock()
	s.projects = slices.DeleteFunc(s.projects, func(p *project.Project) bool { return p.ID == id })
	wasActive := s.activeID == id

	var next *project.Project
	if wasActive && len(s.projects) > 0 {
		c := *s.projects[0]
		next = &c
	}
	s.mu.Unlock()

	s.succeed(ctx, "Project deleted")

	if wasActive {
		return s.activate(ctx, u.ID, next)
	}

	return nil
}
