package engine

import (
	"github.com/daisywatson/monopoly-game/internal/game/models"
)

// CommandType names a player command as it arrives over the wire
type CommandType string

const (
	CmdRollAndMove       CommandType = "roll_and_move"
	CmdBuyProperty       CommandType = "buy_property"
	CmdDeclineAndAuction CommandType = "decline_and_auction"
	CmdPayTax            CommandType = "pay_tax"
	CmdPayJailFee        CommandType = "pay_jail_fee"
	CmdRollInJail        CommandType = "roll_in_jail"
	CmdUseJailCard       CommandType = "use_jail_card"
	CmdSubmitBid         CommandType = "submit_bid"
	CmdPass              CommandType = "pass"
	CmdMortgage          CommandType = "mortgage"
	CmdUnmortgage        CommandType = "unmortgage"
	CmdBuildHouse        CommandType = "build_house"
	CmdBuildHotel        CommandType = "build_hotel"
	CmdSellHouse         CommandType = "sell_house"
	CmdSellHotel         CommandType = "sell_hotel"
	CmdAuctionProperty   CommandType = "auction_property"
	CmdSellProperty      CommandType = "sell_property_to_player"
	CmdSellJailCard      CommandType = "sell_jail_card"
	CmdRespondToOffer    CommandType = "respond_to_offer"
	CmdPayDebt           CommandType = "pay_debt"
	CmdDeclareBankruptcy CommandType = "declare_bankruptcy"
	CmdEndTurn           CommandType = "end_turn"
)

// Command is one player command with its arguments. Fields a command does
// not use are ignored.
type Command struct {
	Type   CommandType `json:"type"`
	Square int         `json:"square,omitempty"`
	Target int         `json:"target,omitempty"`
	Amount int         `json:"amount,omitempty"`
	Choice TaxChoice   `json:"choice,omitempty"`
	Accept bool        `json:"accept,omitempty"`
}

// Apply runs cmd against the session
func (s *Session) Apply(cmd Command) error {
	switch cmd.Type {
	case CmdRollAndMove:
		return s.RollAndMove()
	case CmdBuyProperty:
		return s.BuyProperty()
	case CmdDeclineAndAuction:
		return s.DeclineAndAuction()
	case CmdPayTax:
		return s.PayTax(cmd.Choice)
	case CmdPayJailFee:
		return s.PayJailFee()
	case CmdRollInJail:
		return s.RollInJail()
	case CmdUseJailCard:
		return s.UseJailCard()
	case CmdSubmitBid:
		return s.SubmitBid(cmd.Amount)
	case CmdPass:
		return s.Pass()
	case CmdMortgage:
		return s.Mortgage(cmd.Square)
	case CmdUnmortgage:
		return s.Unmortgage(cmd.Square)
	case CmdBuildHouse:
		return s.BuildHouse(cmd.Square)
	case CmdBuildHotel:
		return s.BuildHotel(cmd.Square)
	case CmdSellHouse:
		return s.SellHouse(cmd.Square)
	case CmdSellHotel:
		return s.SellHotel(cmd.Square)
	case CmdAuctionProperty:
		return s.AuctionProperty(cmd.Square)
	case CmdSellProperty:
		return s.SellPropertyToPlayer(cmd.Square, cmd.Target, cmd.Amount)
	case CmdSellJailCard:
		return s.SellJailCard(cmd.Target, cmd.Amount)
	case CmdRespondToOffer:
		return s.RespondToOffer(cmd.Accept)
	case CmdPayDebt:
		return s.PayDebt()
	case CmdDeclareBankruptcy:
		return s.DeclareBankruptcy()
	case CmdEndTurn:
		return s.EndTurn()
	}
	return invalidCommand("unknown command %q", cmd.Type)
}

// CommandFromAction converts a validated client action
func CommandFromAction(a models.GameAction) Command {
	return Command{
		Type:   CommandType(a.Type),
		Square: a.Square,
		Target: a.Target,
		Amount: a.Amount,
		Choice: TaxChoice(a.Choice),
		Accept: a.Accept,
	}
}
