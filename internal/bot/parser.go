package bot

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Slash commands
const (
	COMMAND_NAME_ONBOARD = "onboard"
	COMMAND_NAME_FINISH  = "finish"
)

// Custom ids of the interactive elements
const (
	CUSTOM_ID_SCHOOL_SELECT      = "school_select"
	CUSTOM_ID_OPEN_DETAILS       = "open_modal_btn"
	CUSTOM_ID_DETAILS_MODAL      = "volunteer_details"
	CUSTOM_ID_INPUT_LOCATION     = "location"
	CUSTOM_ID_INPUT_AVAILABILITY = "availability"
)

const (
	COMMAND_BEGIN          = iota
	COMMAND_FINISH         = iota
	COMMAND_SELECT_SCHOOL  = iota
	COMMAND_OPEN_DETAILS   = iota
	COMMAND_SUBMIT_DETAILS = iota
)

const (
	PARSEID_OK                  = iota
	PARSEID_IGNORED             = iota
	PARSEID_UNKNOWN_COMMAND     = iota
	PARSEID_UNKNOWN_COMPONENT   = iota
	PARSEID_NO_SELECTION        = iota
	PARSEID_SCHOOL_NOT_OFFERED  = iota
	PARSEID_MISSING_INPUT       = iota
	PARSEID_UNKNOWN_MODAL       = iota
	PARSEID_NO_USER_INFORMATION = iota
)

var errorMessages map[int]string = map[int]string{
	PARSEID_UNKNOWN_COMMAND:     "Command `%s` not recognised",
	PARSEID_UNKNOWN_COMPONENT:   "Control `%s` not recognised",
	PARSEID_NO_SELECTION:        "No school was selected",
	PARSEID_SCHOOL_NOT_OFFERED:  "School `%s` is not one of the options",
	PARSEID_MISSING_INPUT:       "Please fill in %s",
	PARSEID_UNKNOWN_MODAL:       "Form `%s` not recognised",
	PARSEID_NO_USER_INFORMATION: "Could not tell who sent this interaction",
}

// Who triggered an interaction and from where
type Actor struct {
	UserId      string
	DisplayName string
	Mention     string
	GuildId     string
	RoleIds     []string
}

type ParseResult struct {
	command      int
	parseid      int
	errorMessage string
	arguments    interface{}
	actor        Actor
}

// Work out which onboarding step an interaction corresponds to.
// Only the configured schools are accepted from the dropdown
func Parse(interaction *discordgo.Interaction, schools []string) ParseResult {

	actor, ok := actorOf(interaction)
	if !ok {
		parseid := PARSEID_NO_USER_INFORMATION
		return ParseResult{parseid: parseid, errorMessage: errorMessages[parseid]}
	}

	switch interaction.Type {
	case discordgo.InteractionApplicationCommand:
		name := interaction.ApplicationCommandData().Name
		switch name {
		case COMMAND_NAME_ONBOARD:
			return ParseResult{command: COMMAND_BEGIN, parseid: PARSEID_OK, actor: actor}
		case COMMAND_NAME_FINISH:
			return ParseResult{command: COMMAND_FINISH, parseid: PARSEID_OK, actor: actor}
		default:
			parseid := PARSEID_UNKNOWN_COMMAND
			return ParseResult{parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], name), actor: actor}
		}
	case discordgo.InteractionMessageComponent:
		data := interaction.MessageComponentData()
		switch data.CustomID {
		case CUSTOM_ID_SCHOOL_SELECT:
			return parseSchool(data.Values, schools, actor)
		case CUSTOM_ID_OPEN_DETAILS:
			return ParseResult{command: COMMAND_OPEN_DETAILS, parseid: PARSEID_OK, actor: actor}
		default:
			parseid := PARSEID_UNKNOWN_COMPONENT
			return ParseResult{parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], data.CustomID), actor: actor}
		}
	case discordgo.InteractionModalSubmit:
		data := interaction.ModalSubmitData()
		if data.CustomID != CUSTOM_ID_DETAILS_MODAL {
			parseid := PARSEID_UNKNOWN_MODAL
			return ParseResult{parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], data.CustomID), actor: actor}
		}
		return parseDetails(data.Components, actor)
	default:
		log.Debug().Msg(fmt.Sprintf("Ignoring interaction of type %s", interaction.Type))
		return ParseResult{parseid: PARSEID_IGNORED, actor: actor}
	}
}

func parseSchool(values []string, schools []string, actor Actor) ParseResult {
	if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
		parseid := PARSEID_NO_SELECTION
		return ParseResult{command: COMMAND_SELECT_SCHOOL, parseid: parseid, errorMessage: errorMessages[parseid], actor: actor}
	}
	school := values[0]
	if !slices.Contains(schools, school) {
		parseid := PARSEID_SCHOOL_NOT_OFFERED
		return ParseResult{command: COMMAND_SELECT_SCHOOL, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], school), actor: actor}
	}
	return ParseResult{command: COMMAND_SELECT_SCHOOL, parseid: PARSEID_OK, arguments: SchoolChosen{School: school}, actor: actor}
}

func parseDetails(rows []discordgo.MessageComponent, actor Actor) ParseResult {
	inputs := textInputs(rows)
	details := DetailsSubmitted{
		Location:     strings.TrimSpace(inputs[CUSTOM_ID_INPUT_LOCATION]),
		Availability: strings.TrimSpace(inputs[CUSTOM_ID_INPUT_AVAILABILITY]),
	}
	missing := []string{}
	if details.Location == "" {
		missing = append(missing, FIELD_LOCATION)
	}
	if details.Availability == "" {
		missing = append(missing, FIELD_AVAILABILITY)
	}
	if len(missing) > 0 {
		parseid := PARSEID_MISSING_INPUT
		return ParseResult{command: COMMAND_SUBMIT_DETAILS, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], strings.Join(missing, " and ")), actor: actor}
	}
	return ParseResult{command: COMMAND_SUBMIT_DETAILS, parseid: PARSEID_OK, arguments: details, actor: actor}
}

// Values of the text inputs of a modal, keyed by custom id
func textInputs(rows []discordgo.MessageComponent) map[string]string {
	values := map[string]string{}
	var visit func(component discordgo.MessageComponent)
	visit = func(component discordgo.MessageComponent) {
		switch c := component.(type) {
		case *discordgo.ActionsRow:
			for _, child := range c.Components {
				visit(child)
			}
		case discordgo.ActionsRow:
			for _, child := range c.Components {
				visit(child)
			}
		case *discordgo.TextInput:
			values[c.CustomID] = c.Value
		case discordgo.TextInput:
			values[c.CustomID] = c.Value
		}
	}
	for _, row := range rows {
		visit(row)
	}
	return values
}

// Interactions carry a Member inside a guild and a User in direct messages
func actorOf(interaction *discordgo.Interaction) (Actor, bool) {
	if interaction.Member != nil && interaction.Member.User != nil {
		member := interaction.Member
		name := member.Nick
		if name == "" {
			name = userTag(member.User)
		}
		return Actor{
			UserId:      member.User.ID,
			DisplayName: name,
			Mention:     member.User.Mention(),
			GuildId:     interaction.GuildID,
			RoleIds:     member.Roles,
		}, true
	}
	if interaction.User != nil {
		return Actor{
			UserId:      interaction.User.ID,
			DisplayName: userTag(interaction.User),
			Mention:     interaction.User.Mention(),
			GuildId:     interaction.GuildID,
		}, true
	}
	return Actor{}, false
}

func userTag(user *discordgo.User) string {
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.String()
}
