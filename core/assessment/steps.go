package assessment

// Step is one generation step of the template-fill pipeline.
type Step struct {
	Name        string
	Prompt      string
	Temperature float64
	JSONMode    bool
	ExpectedKey string
	Process     processor
}

// Steps returns the generation sequence. Intended Uses must run first:
// every later step embeds its output, and the pipeline skips them all
// when no intended use was produced. Impact on Stakeholders must run
// after Risks of Use because it refines two of that step's
// placeholders.
func Steps() []Step {
	return []Step{
		{"Intended Uses", intendedUsesPrompt, 0.1, true, "intendeduses", processIntendedUses},
		{"Solution Scope", solutionScopePrompt, 0.1, true, "solutionscope", processSolutionScope},
		{"Solution Information", solutionInformationPrompt, 0.1, true, "solution_information", processSolutionInformation},
		{"Fitness for Purpose", fitnessForPurposePrompt, 0.2, true, "fitnessforpurpose", processFitnessForPurpose},
		{"Stakeholders", stakeholdersPrompt, 0.4, true, "intendeduse_stakeholder", processStakeholders},
		{"Goals A5 and T3", goalsA5T3Prompt, 0.2, true, "intendeduse_answers", processOversightGoals},
		{"Fairness Goals", fairnessGoalsPrompt, 0.1, true, "intendeduse_fairness_answers", processFairnessGoals},
		{"Solution Assessment", solutionAssessmentPrompt, 0.1, true, "intendeduse_assessment", processSolutionAssessment},
		{"Risks of Use", risksOfUsePrompt, 0.1, true, "risksofuse", processRisksOfUse},
		{"Impact on Stakeholders", impactOnStakeholdersPrompt, 0.3, true, "intendeduse_impactonstakeholders", processImpactOnStakeholders},
		{"Harms Assessment", harmsAssessmentPrompt, 0.1, true, "harms_assessment", processHarmsAssessment},
		{"Disclosure of AI Interaction", disclosurePrompt, 0.1, true, "disclosureofaiinteraction", processDisclosure},
	}
}
