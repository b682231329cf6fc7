package analysis

import (
	"strings"

	"github.com/Abraxas-365/talentmatch/recruitment/job"
)

// BuildPrompt asks for a comparison of the résumé against the job. resumeText is
// inlined when the document is not attached to the request.
func BuildPrompt(j *job.Job, resumeText string) string {
	var sb strings.Builder

	sb.WriteString("Compare the candidate's résumé with the job posting below. ")
	sb.WriteString("List what already fits the role, what is missing or weak, and concrete changes to the résumé that would make it a better fit.\n\n")

	sb.WriteString("Job title: " + string(j.Title) + "\n")
	if j.CompanyName != "" {
		sb.WriteString("Company: " + string(j.CompanyName) + "\n")
	}
	if j.ExperienceLevel != "" {
		sb.WriteString("Experience level: " + string(j.ExperienceLevel) + "\n")
	}
	if len(j.SkillNames) > 0 {
		sb.WriteString("Required skills: " + strings.Join(j.SkillNames, ", ") + "\n")
	}
	if len(j.Requirements) > 0 {
		sb.WriteString("Requirements:\n")
		for _, r := range j.Requirements {
			sb.WriteString("- " + string(r) + "\n")
		}
	}
	if j.Description != "" {
		sb.WriteString("Description: " + string(j.Description) + "\n")
	}

	sb.WriteString("\nRespond only with a JSON object of this exact shape:\n")
	sb.WriteString(`{"strengths": ["..."], "weakness": ["..."], "suggests": ["..."]}`)
	sb.WriteString("\n")

	if resumeText != "" {
		sb.WriteString("\nRésumé:\n")
		sb.WriteString(resumeText)
		sb.WriteString("\n")
	}

	return sb.String()
}
