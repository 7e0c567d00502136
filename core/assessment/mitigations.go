package assessment

// harmMitigation returns the mitigation guidance for one harm
// assessment question. The texts mirror the Responsible AI Standard
// goals the assessment template is built around.
func harmMitigation(id string) string {
	switch id {
	case "01":
		return `Goal A2: Oversight of significant adverse impacts
Harms that result from Sensitive Uses must be mitigated by guidance received from the Office of Responsible AI's Sensitive Uses team. Please report your system as a Sensitive Use. For Restricted Uses, see guidance.
`
	case "02":
		return `Goal A3: Fit for purpose
This harm is mitigated by assessing whether the system is fit for purpose for this intended use by providing evidence, recognizing that there may be many valid ways in which to solve the problem.
`
	case "03":
		return `Goal A4: Data governance and management
This harm is mitigated by ensuring that data used to train the system is correctly processed and appropriate based on the intended use, stakeholders, and geographic areas.
`
	case "04":
		return `Goal A5: Human oversight and control
This harm can be mitigated by modifying system elements (like system UX, features, educational materials, etc.) so that the relevant stakeholders can effectively understand and fulfill their oversight responsibilities.
`
	case "05":
		return `Goal T1: System intelligibility for decision making
This Goal applies to all AI systems when the intended use of the generated outputs is to inform decision making by or about people.
This harm is mitigated by modifying system elements (like system UX, features, educational materials, etc.) so that the affected stakeholders can interpret system behavior effectively.
`
	case "06":
		return `Goal T2: Communication to stakeholders
This harm is mitigated by providing stakeholders with relevant information about the system to inform decisions about when to employ the system or platform.
`
	case "07":
		return `Goal T3: Disclosure of AI interaction
This Goal applies to AI systems that impersonate interactions with humans, unless it is obvious from the circumstances or context of use that an AI system is in use; and AI systems that generate or manipulate image, audio, or video content that could falsely appear to be authentic.
This harm is mitigated by modifying system elements (like system UX, features, educational materials, etc.) so that the relevant stakeholders will understand the type of AI system they are interacting with or that the content they are exposed to is AI-generated.
`
	case "08":
		return `Goal F1: Quality of Service
This Goal applies to AI systems when system users or people impacted by the system with different demographic characteristics might experience differences in quality of service that can be remedied by building the system differently.
This harm is mitigated by evaluating the data sets and the system then modifying the system to improve system performance for affected demographic groups while minimizing performance differences between identified demographic groups.
`
	case "09":
		return `Goal F2: Allocation of resources and opportunities
This Goal applies to AI systems that generate outputs that directly affect the allocation of resources or opportunities relating to finance, education, employment, healthcare, housing, insurance, or social welfare.
This harm is mitigated by evaluating the data sets and the system then modifying the system to minimize differences in the allocation of resources and opportunities between identified demographic groups.
`
	case "10":
		return `Goal F3: Minimization of stereotyping, demeaning, and erasing outputs
This Goal applies to AI systems when system outputs include descriptions, depictions, or other representations of people, cultures, or society.
This harm is mitigated by a rigorous understanding of how different demographic groups are represented within the AI system and modifying the system to minimize harmful outputs.
`
	case "11":
		return `Goal RS1: Reliability and safety guidance
This harm is mitigated by defining safe and reliable behavior for the system, ensuring that datasets include representation of key intended uses, defining operational factors and ranges that are important for safe and reliable behavior, and communicating information about reliability and safety to stakeholders.
`
	case "12":
		return `Goal RS2: Failures and remediations
This harm is mitigated by establishing failure management approaches for each predictable failure.
`
	case "13":
		return `Goal RS3: Ongoing monitoring, feedback, and evaluation
This harm is mitigated by establishing system monitoring methods that allow the team to identify and review new uses, identify and troubleshoot issues, manage and maintain the system, and improve the system over time.
`
	default:
		return ""
	}
}
