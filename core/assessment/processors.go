package assessment

import (
	"strconv"
	"strings"
)

// pipelineState carries the structured outputs that later steps embed
// in their prompts or substitutions.
type pipelineState struct {
	uses         []IntendedUse
	stakeholders StakeholderMap

	// Solution-wide impact texts from the risks step; the
	// impact-on-stakeholders step leads with them before its per-use
	// refinements.
	failureImpact string
	misuseImpact  string
}

// A processor turns a step's extracted JSON into placeholder
// substitutions. Missing data yields blank replacements so a partially
// answered step still clears its placeholders from the template.
type processor func(parsed map[string]any, state *pipelineState) (search, replace []string)

func processIntendedUses(parsed map[string]any, state *pipelineState) ([]string, []string) {
	list := asList(parsed["intendeduses"])

	var search, replace []string
	for n := 1; n <= maxIntendedUses; n++ {
		id := zeroPad(n)
		name, description := "", ""
		if n <= len(list) {
			use := asMap(list[n-1])
			name = getString(use, "name")
			description = getString(use, "description")
		}
		search = append(search, "##INTENDED_USE_NAME_"+id, "##INTENDED_USE_"+id, "##INTENDED_USE_DESCRIPTION_"+id)
		replace = append(replace, name, name, description)
	}

	uses := make([]IntendedUse, 0, len(list))
	for i, item := range list {
		if i >= maxIntendedUses {
			break
		}
		use := asMap(item)
		uses = append(uses, IntendedUse{
			ID:          zeroPad(i + 1),
			Name:        getString(use, "name"),
			Description: getString(use, "description"),
		})
	}
	state.uses = uses
	return search, replace
}

var solutionScopeFields = []struct {
	placeholder string
	key         string
}{
	{"##CURRENT_DEPLOYMENT_LOCATION", "current_deployment_location"},
	{"##UPCOMING_RELEASE_DEPLOYMENT_LOCATIONS", "upcoming_release_deployment_locations"},
	{"##FUTURE_DEPLOYMENT_LOCATIONS", "future_deployment_locations"},
	{"##CURRENT_SUPPORTED_LANGUAGES", "current_supported_languages"},
	{"##UPCOMING_RELEASE_SUPPORTED_LANGUAGES", "upcoming_release_supported_languages"},
	{"##FUTURE_SUPPORTED_LANGUAGES", "future_supported_languages"},
	{"##CURRENT_SOLUTION_DEPLOYMENT_METHOD", "current_solution_deployment_method"},
	{"##UPCOMING_RELEASE_SOLUTION_DEPLOYMENT_METHOD", "upcoming_release_solution_deployment_method"},
	{"##CLOUD_PLATFORM", "cloud_platform"},
	{"##DATA_REQUIREMENTS", "data_requirements"},
	{"##EXISTING_DATA_SETS", "existing_data_sets"},
}

func processSolutionScope(parsed map[string]any, _ *pipelineState) ([]string, []string) {
	scope := asMap(parsed["solutionscope"])
	var search, replace []string
	for _, field := range solutionScopeFields {
		search = append(search, field.placeholder)
		replace = append(replace, getString(scope, field.key))
	}
	return search, replace
}

func processSolutionInformation(parsed map[string]any, _ *pipelineState) ([]string, []string) {
	info := asMap(parsed["solution_information"])
	var search, replace []string

	search = append(search, "##SOLUTION_NAME", "##SOLUTION_PURPOSE")
	replace = append(replace, getString(info, "solution_name"), getString(info, "solution_purpose"))

	supplementary := asList(info["supplementary_informations"])
	for n := 1; n <= 5; n++ {
		id := zeroPad(n)
		name, link := "", ""
		if n <= len(supplementary) {
			item := asMap(supplementary[n-1])
			name = getString(item, "name")
			link = getString(item, "link")
		} else if n == 1 {
			name, link = "None", "None"
		}
		search = append(search, "##SUPPLEMENTARY_INFORMATION_"+id, "##SUPPLEMENTARY_INFORMATION_LINK_"+id)
		replace = append(replace, name, link)
	}

	existing := getStringList(info, "existing_features")
	upcoming := getStringList(info, "upcoming_features")
	for n := 1; n <= 10; n++ {
		id := zeroPad(n)
		feature := ""
		if n <= len(existing) {
			feature = existing[n-1]
		} else if n == 1 {
			feature = "None"
		}
		search = append(search, "##EXISTING_FEATURE_"+id)
		replace = append(replace, feature)
	}
	for n := 1; n <= 10; n++ {
		id := zeroPad(n)
		feature := ""
		if n <= len(upcoming) {
			feature = upcoming[n-1]
		} else if n == 1 {
			feature = "None"
		}
		search = append(search, "##UPCOMING_FEATURE_"+id)
		replace = append(replace, feature)
	}

	search = append(search, "##RELATION_TO_OTHER_FEATURES")
	replace = append(replace, getString(info, "solution_relations"))
	return search, replace
}

func processFitnessForPurpose(parsed map[string]any, _ *pipelineState) ([]string, []string) {
	list := asList(parsed["fitnessforpurpose"])
	var search, replace []string
	for n := 1; n <= maxIntendedUses; n++ {
		fitness := ""
		if n <= len(list) {
			fitness = getString(asMap(list[n-1]), "fitness_for_purpose")
		}
		search = append(search, "##ASSESSMENT_OF_FITNESS_FOR_PURPOSE_IU"+zeroPad(n))
		replace = append(replace, fitness)
	}
	return search, replace
}

func processStakeholders(parsed map[string]any, state *pipelineState) ([]string, []string) {
	list := asList(parsed["intendeduse_stakeholder"])
	stakeholderMap := StakeholderMap{}
	var search, replace []string

	for n := 1; n <= maxIntendedUses; n++ {
		id := zeroPad(n)
		var stakeholders []any
		for _, item := range list {
			entry := asMap(item)
			if useID(entry, "intendeduse_id") == id {
				stakeholders = asList(entry["StakeHolders"])
				break
			}
		}

		if len(stakeholders) > maxStakeholdersPerUse {
			stakeholders = stakeholders[:maxStakeholdersPerUse]
		}
		if len(stakeholders) > 0 {
			names := make([]string, 0, len(stakeholders))
			for _, s := range stakeholders {
				names = append(names, getString(asMap(s), "name"))
			}
			stakeholderMap["intended_use_"+id] = names
		}

		for k := 1; k <= maxStakeholdersPerUse; k++ {
			sid := zeroPad(k)
			name, benefits, harms := "", "", ""
			if k <= len(stakeholders) {
				stakeholder := asMap(stakeholders[k-1])
				name = getString(stakeholder, "name")
				benefits = getString(stakeholder, "potential_solution_benefits")
				harms = getString(stakeholder, "potential_solution_harms")
			}
			search = append(search,
				"##STAKEHOLDER_"+sid+"_IU"+id,
				"##STAKEHOLDER_BENEFITS_"+sid+"_IU"+id,
				"##STAKEHOLDER_HARMS_"+sid+"_IU"+id,
			)
			replace = append(replace, name, benefits, harms)
		}
	}

	state.stakeholders = stakeholderMap
	return search, replace
}

type goalTag struct {
	questionID  string
	placeholder string
}

var oversightGoalTags = []goalTag{
	{"GOAL_A5_Q1", "##HUMAN_OVERSIGHT_IU"},
	{"GOAL_A5_Q2", "##HUMAN_RESPONSIBILITIES_IU"},
	{"GOAL_T1_Q1", "##DECISIONMAKING_OUTPUTS_IU"},
	{"GOAL_T1_Q2", "##DECISIONMAKING_MADE_IU"},
	{"GOAL_T2_Q1", "##DECISIONMAKING_STAKEHOLDERS_IU"},
	{"GOAL_T2_Q2", "##DEVELOPDEPLOY_SOLUTION_IU"},
	{"GOAL_T3_Q1", "##DISCLOSURE_AND_AI_INTERACTION_IU"},
}

var fairnessGoalTags = []goalTag{
	{"GOAL_F1_Q1", "##QUALITYOFSERVICE_STAKEHOLDERS_IU"},
	{"GOAL_F1_Q2", "##QUALITYOFSERVICE_PIORITIZED_IU"},
	{"GOAL_F1_Q3", "##QUALITYOFSERVICE_AFFECTED_IU"},
	{"GOAL_F2_Q1", "##ALLOCATION_STAKEHOLDERS_IU"},
	{"GOAL_F2_Q2", "##ALLOCATION_PRIORITIZED_IU"},
	{"GOAL_F2_Q3", "##ALLOCATION_AFFECTED_IU"},
	{"GOAL_F3_Q1", "##MINIMIZATION_STAKEHOLDERS_IU"},
	{"GOAL_F3_Q2", "##MINIMIZATION_PRIORITIZED_IU"},
	{"GOAL_F3_Q3", "##MINIMIZATION_AFFECTED_IU"},
}

func goalAnswersByUse(parsed map[string]any, key, useIDWanted string) []any {
	for _, item := range asList(parsed[key]) {
		entry := asMap(item)
		if useID(entry, "intendeduse_id") == useIDWanted {
			return asList(entry["answers"])
		}
	}
	return nil
}

func goalAnswer(answers []any, questionID string) (string, bool) {
	for _, item := range answers {
		answer := asMap(item)
		if getString(answer, "question_id") == questionID {
			return getString(answer, "detailed_answer"), true
		}
	}
	return "", false
}

func processGoalAnswers(parsed map[string]any, key string, tags []goalTag, missing string) ([]string, []string) {
	var search, replace []string
	for n := 1; n <= maxIntendedUses; n++ {
		id := zeroPad(n)
		answers := goalAnswersByUse(parsed, key, id)
		for _, tag := range tags {
			text, found := goalAnswer(answers, tag.questionID)
			if !found {
				text = missing
			}
			search = append(search, tag.placeholder+id)
			replace = append(replace, text)
		}
	}
	return search, replace
}

func processOversightGoals(parsed map[string]any, _ *pipelineState) ([]string, []string) {
	return processGoalAnswers(parsed, "intendeduse_answers", oversightGoalTags, "")
}

func processFairnessGoals(parsed map[string]any, _ *pipelineState) ([]string, []string) {
	return processGoalAnswers(parsed, "intendeduse_fairness_answers", fairnessGoalTags, "N/A")
}

// selectedID extracts the trailing option number from an identifier
// like "technology_readiness_3".
func selectedID(choice map[string]any, key string) string {
	value := getString(choice, key)
	if value == "" {
		return ""
	}
	if idx := strings.LastIndex(value, "_"); idx >= 0 {
		value = value[idx+1:]
	}
	if len(value) == 1 {
		value = "0" + value
	}
	return value
}

func processSolutionAssessment(parsed map[string]any, _ *pipelineState) ([]string, []string) {
	var search, replace []string

	appendGrid := func(prefix, useID, selected string, count int) {
		for n := 1; n <= count; n++ {
			id := zeroPad(n)
			mark := ""
			if id == selected {
				mark = "X"
			}
			search = append(search, "##"+prefix+"_"+id+"_IU"+useID)
			replace = append(replace, mark)
		}
	}

	for _, item := range asList(parsed["intendeduse_assessment"]) {
		entry := asMap(item)
		id := useID(entry, "intendeduse_id")

		var choice map[string]any
		switch v := entry["assessment"].(type) {
		case []any:
			if len(v) > 0 {
				choice = asMap(v[0])
			}
		case map[string]any:
			choice = v
		}

		appendGrid("TECH_ASSESSMENT", id, selectedID(choice, "technology_readiness_id"), 5)
		appendGrid("TASK_COMPLEXITY", id, selectedID(choice, "task_complexity_id"), 3)
		appendGrid("ROLE_OF_HUMAN", id, selectedID(choice, "role_of_humans_id"), 5)
		appendGrid("DEPLOYMENT_COMPLEXITY", id, selectedID(choice, "deployment_environment_complexity_id"), 3)
	}
	return search, replace
}

func processRisksOfUse(parsed map[string]any, state *pipelineState) ([]string, []string) {
	risks := asMap(parsed["risksofuse"])
	var search, replace []string

	search = append(search, "##RESTRICTED_USES", "##UNSUPPORTED_USES", "##KNOWN_LIMITATIONS")
	replace = append(replace,
		listJoin(risks, "restricted_uses"),
		listJoin(risks, "unsupported_uses"),
		getString(risks, "known_limitations"),
	)

	// The solution-wide impact texts are stashed so the later
	// impact-on-stakeholders step can lead with them when it rewrites
	// the shared placeholders.
	state.failureImpact = getString(risks, "potential_impact_of_failure_on_stakeholders")
	state.misuseImpact = getString(risks, "potential_impact_of_misuse_on_stakeholders")
	search = append(search, "##FAILURE_ON_STAKEHOLDERS", "##MISUSE_ON_STAKEHOLDERS")
	replace = append(replace, state.failureImpact, state.misuseImpact)

	yesNo := func(key string) string {
		if getBool(risks, key) {
			return "  Yes"
		}
		return "  No"
	}
	search = append(search, "##SENSITIVE_USE_01", "##SENSITIVE_USE_02", "##SENSITIVE_USE_03")
	replace = append(replace, yesNo("sensitive_use_1"), yesNo("sensitive_use_2"), yesNo("sensitive_use_3"))

	return search, replace
}

func processImpactOnStakeholders(parsed map[string]any, state *pipelineState) ([]string, []string) {
	var failureText, misuseText strings.Builder
	if state.failureImpact != "" {
		failureText.WriteString(state.failureImpact + "\n\n")
	}
	if state.misuseImpact != "" {
		misuseText.WriteString(state.misuseImpact + "\n\n")
	}
	for _, item := range asList(parsed["intendeduse_impactonstakeholders"]) {
		entry := asMap(item)
		id := useID(entry, "intendeduse_id")

		name := ""
		for _, use := range state.uses {
			if use.ID == id {
				name = use.Name
				break
			}
		}

		impacts := asList(entry["impact_on_stakeholders"])
		if len(impacts) == 0 {
			continue
		}
		impact := asMap(impacts[0])
		failureText.WriteString(name + ":\n" + getString(impact, "potential_impact_of_failure_on_stakeholders") + "\n\n")
		misuseText.WriteString(name + ":\n" + getString(impact, "potential_impact_of_misuse_on_stakeholders") + "\n\n")
	}

	return []string{"##FAILURE_ON_STAKEHOLDERS", "##MISUSE_ON_STAKEHOLDERS"},
		[]string{
			strings.TrimSuffix(failureText.String(), "\n\n"),
			strings.TrimSuffix(misuseText.String(), "\n\n"),
		}
}

func processHarmsAssessment(parsed map[string]any, _ *pipelineState) ([]string, []string) {
	harms := asList(parsed["harms_assessment"])
	var search, replace []string

	for n := 1; n <= 10; n++ {
		id := zeroPad(n)
		harmText, goals, mitigation := "", "", ""
		if n <= len(harms) {
			harm := asMap(harms[n-1])
			harmText = getString(harm, "identified_harm")
			goals = getString(harm, "corresponding_goals")

			answers := asMap(harm["assessment"])
			var mitigations []string
			for q := 1; q <= 13; q++ {
				if getBool(answers, "Q"+strconv.Itoa(q)) {
					if text := harmMitigation(zeroPad(q)); text != "" {
						mitigations = append(mitigations, text)
					}
				}
			}
			mitigation = strings.Join(mitigations, "------------------------\n")
		}
		search = append(search, "##HARM_"+id, "##HARM_"+id+"_GOAL", "##HARM_"+id+"_MITIGATION")
		replace = append(replace, harmText, goals, mitigation)
	}
	return search, replace
}

func processDisclosure(parsed map[string]any, _ *pipelineState) ([]string, []string) {
	disclosure := asMap(parsed["disclosureofaiinteraction"])
	applies := "  No"
	if getBool(disclosure, "disclosure_of_ai_interaction_applies") {
		applies = "  Yes"
	}
	return []string{"##DISCLOSURE_OF_AI_INTERACTION", "##DISCLOSURE_OF_AI_INTERACTION_EXPLANATION"},
		[]string{applies, getString(disclosure, "explanation")}
}
