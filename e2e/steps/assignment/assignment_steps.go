package assignment

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	POST(path string, body interface{}) error
	DELETE(path string) error
	LastStatus() int
	GetResponseField(field string) (interface{}, error)
	SetVar(name, value string)
	Capture(name, field string) error
}

// RegisterSteps registers assignment lifecycle step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &assignmentSteps{tc: tc}

	ctx.Step(`^a policy "([^"]*)"$`, steps.usePolicy)
	ctx.Step(`^I add recipients "([^"]*)"$`, steps.addRecipients)
	ctx.Step(`^I send the policy assignments$`, steps.sendAssignments)
	ctx.Step(`^I list the policy's assignments$`, steps.listAssignments)
	ctx.Step(`^I list the policy's assignments with status "([^"]*)"$`, steps.listAssignmentsByStatus)
	ctx.Step(`^I remember the first assignment as "([^"]*)"$`, steps.rememberFirstAssignment)
	ctx.Step(`^I send a reminder for "([^"]*)"$`, steps.sendReminder)
	ctx.Step(`^I delete assignment "([^"]*)"$`, steps.deleteAssignment)
	ctx.Step(`^I resend the link for "([^"]*)"$`, steps.resendLink)
	ctx.Step(`^I run a bulk "([^"]*)" for assignments "([^"]*)"$`, steps.runBulk)
	ctx.Step(`^I preview a bulk "([^"]*)" for assignments "([^"]*)"$`, steps.previewBulk)

	ctx.Step(`^every listed assignment should have status "([^"]*)"$`, steps.everyAssignmentShouldHaveStatus)
}

type assignmentSteps struct {
	tc TestContext
}

func (s *assignmentSteps) usePolicy(ctx context.Context, policyID string) error {
	s.tc.SetVar("policyID", policyID)
	return nil
}

func (s *assignmentSteps) addRecipients(ctx context.Context, emails string) error {
	body := map[string]interface{}{
		"emails": strings.Split(emails, ","),
	}
	return s.tc.POST("/policies/{policyID}/recipients", body)
}

func (s *assignmentSteps) sendAssignments(ctx context.Context) error {
	return s.tc.POST("/policies/{policyID}/send", nil)
}

func (s *assignmentSteps) listAssignments(ctx context.Context) error {
	return s.tc.GET("/policies/{policyID}/assignments")
}

func (s *assignmentSteps) listAssignmentsByStatus(ctx context.Context, status string) error {
	return s.tc.GET("/policies/{policyID}/assignments?status=" + status)
}

func (s *assignmentSteps) rememberFirstAssignment(ctx context.Context, name string) error {
	return s.tc.Capture(name, "assignments.0.id")
}

func (s *assignmentSteps) sendReminder(ctx context.Context, name string) error {
	return s.tc.POST("/assignments/{"+name+"}/remind", nil)
}

func (s *assignmentSteps) deleteAssignment(ctx context.Context, name string) error {
	return s.tc.DELETE("/assignments/{" + name + "}")
}

func (s *assignmentSteps) resendLink(ctx context.Context, name string) error {
	return s.tc.POST("/assignments/{"+name+"}/resend-link", nil)
}

func (s *assignmentSteps) runBulk(ctx context.Context, action, names string) error {
	return s.tc.POST("/assignments/bulk/"+action, s.bulkBody(names, false))
}

func (s *assignmentSteps) previewBulk(ctx context.Context, action, names string) error {
	return s.tc.POST("/assignments/bulk/"+action, s.bulkBody(names, true))
}

func (s *assignmentSteps) bulkBody(names string, dryRun bool) map[string]interface{} {
	ids := []string{}
	for _, name := range strings.Split(names, ",") {
		ids = append(ids, "{"+strings.TrimSpace(name)+"}")
	}
	return map[string]interface{}{
		"policy_id": "{policyID}",
		"ids":       ids,
		"dry_run":   dryRun,
	}
}

func (s *assignmentSteps) everyAssignmentShouldHaveStatus(ctx context.Context, status string) error {
	value, err := s.tc.GetResponseField("assignments")
	if err != nil {
		return err
	}
	assignments, ok := value.([]interface{})
	if !ok {
		return fmt.Errorf("expected assignments to be an array, got %T", value)
	}
	for i, entry := range assignments {
		record, ok := entry.(map[string]interface{})
		if !ok {
			return fmt.Errorf("assignment %d is not an object", i)
		}
		if got := fmt.Sprintf("%v", record["status"]); got != status {
			return fmt.Errorf("assignment %d has status %q, want %q", i, got, status)
		}
	}
	return nil
}
