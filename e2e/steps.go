package e2e

import (
	"github.com/cucumber/godog"

	"attest/e2e/steps/ack"
	"attest/e2e/steps/assignment"
	"attest/e2e/steps/common"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Register common steps (generic requests, assertions)
	common.RegisterSteps(ctx, tc)

	// Register assignment lifecycle steps
	assignment.RegisterSteps(ctx, tc)

	// Register acknowledgment flow steps
	ack.RegisterSteps(ctx, tc)
}
