package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Green, like the "New Volunteer" log entries
const color int = 0x2ecc71

func Welcome(guildName string, mention string) Response {

	content := fmt.Sprintf("Welcome to %s, %s!\n\n", guildName, mention)
	content += "We'd love to learn a bit about you to match you with a volunteer opportunity.\n"
	content += "Please select your preferred school and share your location and availability.\n"
	content += fmt.Sprintf("When you're done, run `/%s` here or in the server.", COMMAND_NAME_FINISH)
	return ResponsePrompt{content: content}
}

func OnboardingPrompt(schools []string) Response {

	content := "Let's get you onboarded as a volunteer!\n"
	content += "- Choose your preferred school\n"
	content += "- Click 'Open details' and provide your location and availability\n\n"
	content += fmt.Sprintf("When done, run `/%s` (here or in DMs).", COMMAND_NAME_FINISH)
	return ResponsePrompt{content: content, components: OnboardingComponents(schools)}
}

// The school dropdown followed by the button that opens the details form.
// Options are exactly the configured schools, in order
func OnboardingComponents(schools []string) []discordgo.MessageComponent {

	options := make([]discordgo.SelectMenuOption, 0, len(schools))
	for _, school := range schools {
		options = append(options, discordgo.SelectMenuOption{Label: school, Value: school})
	}
	minValues := 1
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    CUSTOM_ID_SCHOOL_SELECT,
				Placeholder: "Choose your preferred school",
				MinValues:   &minValues,
				MaxValues:   1,
				Options:     options,
			},
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Open details",
				Style:    discordgo.PrimaryButton,
				CustomID: CUSTOM_ID_OPEN_DETAILS,
			},
		}},
	}
}

func DetailsForm() Response {
	return ResponseModal{
		customId: CUSTOM_ID_DETAILS_MODAL,
		title:    "Volunteer Details",
		components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    CUSTOM_ID_INPUT_LOCATION,
					Label:       "Where are you located?",
					Style:       discordgo.TextInputShort,
					Placeholder: "City/Neighborhood",
					Required:    true,
					MaxLength:   100,
				},
			}},
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    CUSTOM_ID_INPUT_AVAILABILITY,
					Label:       "What times are you available?",
					Style:       discordgo.TextInputParagraph,
					Placeholder: "e.g., Weekdays 3-6pm, Sat mornings",
					Required:    true,
					MaxLength:   500,
				},
			}},
		},
	}
}

func DirectMessageClosed(mention string) Response {
	return ResponseString{fmt.Sprintf("Welcome, %s! I tried to DM you to collect onboarding details, but your DMs seem closed. Use `/%s` to start here instead.", mention, COMMAND_NAME_ONBOARD)}
}

func InputNotValid(errorMessage string) Response {
	return ResponseString{fmt.Sprintf("Input not valid: \n> %s", errorMessage)}
}

func SchoolSet(school string) Response {
	return ResponseString{fmt.Sprintf("School set to: %s", school)}
}

func DetailsCaptured(session Session) Response {
	content := "Thanks! Details captured."
	if len(session.Missing()) == 0 {
		content += fmt.Sprintf(" Run `/%s` to complete your onboarding.", COMMAND_NAME_FINISH)
	} else {
		content += " Don't forget to choose your preferred school."
	}
	return ResponseString{content}
}

func MissingFields(missing []string) Response {
	return ResponseString{fmt.Sprintf("Please select a school and submit your details first. Missing: %s.", strings.Join(missing, ", "))}
}

func AlreadyFinalizing() Response {
	return ResponseString{"Your onboarding is already being completed, hang on a moment."}
}

func SessionClosed() Response {
	return ResponseString{fmt.Sprintf("Your onboarding is being completed. Run `/%s` to start over once it is done.", COMMAND_NAME_ONBOARD)}
}

func Completed(roleName string) Response {
	return ResponseString{fmt.Sprintf("You're all set! Your details have been recorded and the %s role has been assigned.", roleName)}
}

func CompletedWithProblems(problems []string) Response {
	content := "Your details have been recorded, but some steps did not go through:\n"
	for _, problem := range problems {
		content += fmt.Sprintf("- %s\n", problem)
	}
	return ResponseString{strings.TrimSuffix(content, "\n")}
}

// Role and log steps run before the store is written, so say which of them
// already went through
func NotSaved(problems []string) Response {
	content := "Something went wrong while saving your details, please try again later or contact a moderator."
	if problems == nil {
		return ResponseString{content}
	}
	if len(problems) == 0 {
		content += "\nThe role was assigned and your submission was posted to the log channel, so no need to repeat those."
	} else {
		content += "\nThe role and log steps ran with these problems:\n"
		for _, problem := range problems {
			content += fmt.Sprintf("- %s\n", problem)
		}
	}
	return ResponseString{strings.TrimSuffix(content, "\n")}
}

// The entry posted to the log channel for every finalized submission
func VolunteerSummary(record VolunteerRecord, mention string) Response {

	embed := discordgo.MessageEmbed{Title: "New Volunteer", Color: color}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "User",
		Value:  fmt.Sprintf("%s (%s)", mention, record.UserTag),
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Location",
		Value:  record.Location,
		Inline: true,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Preferred School",
		Value:  record.School,
		Inline: true,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Availability",
		Value:  record.Availability,
		Inline: false,
	})
	footer := record.Timestamp
	if record.SubmissionId != "" {
		footer += " · " + record.SubmissionId
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: footer}
	return ResponseEmbed{embed}
}
